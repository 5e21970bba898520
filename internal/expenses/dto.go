package expenses

import "time"

// CreateExpenseRequest is the payload for creating a draft claim.
type CreateExpenseRequest struct {
	Department    string        `json:"department" validate:"required,max=100"`
	ExpenseDate   time.Time     `json:"expense_date" validate:"required"`
	ReceiptDate   time.Time     `json:"receipt_date" validate:"required"`
	Amount        int64         `json:"amount" validate:"required,gt=0"`
	Category      Category      `json:"category" validate:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required"`
	Description   string        `json:"description" validate:"max=1000"`
	Purpose       string        `json:"purpose" validate:"max=1000"`
}

// UpdateExpenseRequest carries content edits; nil fields are left unchanged.
type UpdateExpenseRequest struct {
	Department    *string        `json:"department,omitempty" validate:"omitempty,max=100"`
	ExpenseDate   *time.Time     `json:"expense_date,omitempty"`
	ReceiptDate   *time.Time     `json:"receipt_date,omitempty"`
	Amount        *int64         `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Category      *Category      `json:"category,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	Purpose       *string        `json:"purpose,omitempty" validate:"omitempty,max=1000"`
}

// DecisionRequest carries an approver's or finance clerk's note.
type DecisionRequest struct {
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

// ListExpensesRequest filters the expense listing.
type ListExpensesRequest struct {
	ApplicantID *int64     `json:"applicant_id,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Limit       int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int        `json:"offset" validate:"gte=0"`
}
