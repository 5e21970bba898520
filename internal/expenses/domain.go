package expenses

import (
	"errors"
	"time"
)

// Expense lifecycle statuses.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusSettled   Status = "SETTLED"
)

// StatusLabels maps statuses to their Japanese display labels. Kept separate
// from the stored enum so the UI vocabulary can change without a migration.
var StatusLabels = map[Status]string{
	StatusDraft:     "下書き",
	StatusSubmitted: "申請中",
	StatusApproved:  "承認済",
	StatusRejected:  "否認",
	StatusSettled:   "精算済",
}

// Expense claim categories.
type Category string

const (
	CategoryTransportation Category = "TRANSPORTATION"
	CategoryMeals          Category = "MEALS"
	CategorySupplies       Category = "SUPPLIES"
	CategoryBooks          Category = "BOOKS"
	CategoryOthers         Category = "OTHERS"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryTransportation, CategoryMeals, CategorySupplies, CategoryBooks, CategoryOthers:
		return true
	}
	return false
}

// Payment methods.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCashless     PaymentMethod = "CASHLESS"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentBankTransfer, PaymentCashless:
		return true
	}
	return false
}

// Expense is a single expense claim. Amount is whole yen.
type Expense struct {
	ID            int64         `json:"id"`
	ClaimNumber   string        `json:"claim_number"`
	ApplicantID   int64         `json:"applicant_id"`
	Department    string        `json:"department"`
	ExpenseDate   time.Time     `json:"expense_date"`
	ReceiptDate   time.Time     `json:"receipt_date"`
	Amount        int64         `json:"amount"`
	Category      Category      `json:"category"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Description   string        `json:"description"`
	Purpose       string        `json:"purpose"`
	ReceiptURL    *string       `json:"receipt_url,omitempty"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Approval is one immutable approve/reject/settle decision on an expense.
type Approval struct {
	ID              int64  `json:"id"`
	ExpenseID       int64  `json:"expense_id"`
	ApproverID      int64  `json:"approver_id"`
	ResultingStatus Status `json:"resulting_status"`
	Comment         string `json:"comment,omitempty"`
	At              time.Time `json:"at"`
}

var (
	// ErrNotFound indicates the expense does not exist.
	ErrNotFound = errors.New("expenses: not found")
	// ErrInvalidTransition occurs when an action is not legal from the current status.
	ErrInvalidTransition = errors.New("expenses: invalid transition")
	// ErrConflictingTransition occurs when the stored status changed since read.
	ErrConflictingTransition = errors.New("expenses: conflicting transition, refresh and retry")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("expenses: invalid input")
	// ErrForbidden occurs when the actor may not perform the action.
	ErrForbidden = errors.New("expenses: forbidden")
)
