package documents

import (
	"errors"
	"time"
)

// DocType distinguishes quotations from invoices.
type DocType string

const (
	TypeQuotation DocType = "QUOTATION"
	TypeInvoice   DocType = "INVOICE"
)

// ValidDocType reports whether t is a known document type.
func ValidDocType(t DocType) bool {
	return t == TypeQuotation || t == TypeInvoice
}

// TaxMode selects how the consumption tax relates to line amounts.
type TaxMode string

const (
	// TaxExclusive adds tax on top of the line subtotal.
	TaxExclusive TaxMode = "EXCLUSIVE"
	// TaxInclusive treats line amounts as already containing tax.
	TaxInclusive TaxMode = "INCLUSIVE"
)

// TaxModeLabels maps modes to their Japanese display labels.
var TaxModeLabels = map[TaxMode]string{
	TaxExclusive: "外税",
	TaxInclusive: "内税",
}

// ValidTaxMode reports whether m is a known tax mode.
func ValidTaxMode(m TaxMode) bool {
	return m == TaxExclusive || m == TaxInclusive
}

// DefaultTaxMode returns the customary mode for each document type.
// Quotations are quoted tax-exclusive, invoices tax-inclusive.
func DefaultTaxMode(t DocType) TaxMode {
	if t == TypeInvoice {
		return TaxInclusive
	}
	return TaxExclusive
}

// Document lifecycle statuses.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusIssued    Status = "ISSUED"
	StatusConverted Status = "CONVERTED"
)

// Document is a quotation or invoice header. Monetary fields are whole yen.
type Document struct {
	ID         int64            `json:"id"`
	DocNumber  string           `json:"doc_number"`
	DocType    DocType          `json:"doc_type"`
	CustomerID int64            `json:"customer_id"`
	ProjectID  *int64           `json:"project_id,omitempty"`
	Title      string           `json:"title"`
	IssueDate  time.Time        `json:"issue_date"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	DueDate    *time.Time       `json:"due_date,omitempty"`
	TaxRate    float64          `json:"tax_rate"`
	TaxMode    TaxMode          `json:"tax_mode"`
	Subtotal   int64            `json:"subtotal"`
	Tax        int64            `json:"tax"`
	Total      int64            `json:"total"`
	Notes      string           `json:"notes"`
	Status     Status           `json:"status"`
	SourceID   *int64           `json:"source_id,omitempty"`
	Details    []DocumentDetail `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// DocumentDetail is one line item. Quantity may be fractional (days, m2);
// UnitPrice and Amount are whole yen.
type DocumentDetail struct {
	ID         int64   `json:"id"`
	DocumentID int64   `json:"document_id"`
	LineNo     int     `json:"line_no"`
	ProductID  *int64  `json:"product_id,omitempty"`
	ItemName   string  `json:"item_name"`
	Spec       string  `json:"spec,omitempty"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
	UnitPrice  int64   `json:"unit_price"`
	Amount     int64   `json:"amount"`
}

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("documents: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("documents: invalid input")
	// ErrNotEditable occurs when mutating a document that left draft.
	ErrNotEditable = errors.New("documents: only drafts can be modified")
	// ErrNotConvertible occurs when converting anything but an issued quotation.
	ErrNotConvertible = errors.New("documents: only issued quotations can be converted")
	// ErrAlreadyConverted occurs when a quotation was converted before.
	ErrAlreadyConverted = errors.New("documents: quotation already converted")
)
