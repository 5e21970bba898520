package documents

import "time"

// DetailInput is one line item in a create or update payload.
type DetailInput struct {
	ProductID *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	ItemName  string  `json:"item_name" validate:"required,max=200"`
	Spec      string  `json:"spec,omitempty" validate:"max=500"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	Unit      string  `json:"unit,omitempty" validate:"max=20"`
	UnitPrice int64   `json:"unit_price" validate:"gte=0"`
}

// CreateDocumentRequest is the payload for creating a draft document.
// TaxMode defaults by document type when omitted.
type CreateDocumentRequest struct {
	DocType    DocType       `json:"doc_type" validate:"required"`
	CustomerID int64         `json:"customer_id" validate:"required,gt=0"`
	ProjectID  *int64        `json:"project_id,omitempty"`
	Title      string        `json:"title" validate:"required,max=200"`
	IssueDate  time.Time     `json:"issue_date" validate:"required"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	TaxMode    *TaxMode      `json:"tax_mode,omitempty"`
	Notes      string        `json:"notes,omitempty" validate:"max=2000"`
	Details    []DetailInput `json:"details" validate:"dive"`
}

// UpdateDocumentRequest replaces header fields and the full detail list of a
// draft. Nil header fields are left unchanged; Details nil means unchanged too.
type UpdateDocumentRequest struct {
	CustomerID *int64        `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	ProjectID  *int64        `json:"project_id,omitempty"`
	Title      *string       `json:"title,omitempty" validate:"omitempty,max=200"`
	IssueDate  *time.Time    `json:"issue_date,omitempty"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	TaxMode    *TaxMode      `json:"tax_mode,omitempty"`
	Notes      *string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Details    []DetailInput `json:"details,omitempty" validate:"omitempty,dive"`
}

// ConvertRequest optionally overrides the derived invoice's issue date and
// tax mode.
type ConvertRequest struct {
	IssueDate *time.Time `json:"issue_date,omitempty"`
	TaxMode   *TaxMode   `json:"tax_mode,omitempty"`
}

// ListDocumentsRequest filters the document listing.
type ListDocumentsRequest struct {
	DocType    *DocType `json:"doc_type,omitempty"`
	CustomerID *int64   `json:"customer_id,omitempty"`
	Status     *Status  `json:"status,omitempty"`
	Limit      int      `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int      `json:"offset" validate:"gte=0"`
}
