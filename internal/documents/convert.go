package documents

import (
	"fmt"
	"time"
)

// Default terms applied to derived documents.
const (
	invoiceDueDays     = 30
	quotationValidDays = 30
)

// DeriveInvoice builds a new invoice draft from an issued quotation. The
// source is not mutated; line items are copied with fresh identities and the
// totals are recomputed under the invoice's tax mode. An empty mode selects
// the invoice default.
func DeriveInvoice(q Document, issueDate time.Time, mode TaxMode) (Document, error) {
	if q.DocType != TypeQuotation {
		return Document{}, fmt.Errorf("%w: %s is not a quotation", ErrNotConvertible, q.DocNumber)
	}
	switch q.Status {
	case StatusIssued:
	case StatusConverted:
		return Document{}, fmt.Errorf("%w: %s", ErrAlreadyConverted, q.DocNumber)
	default:
		return Document{}, fmt.Errorf("%w: %s is %s", ErrNotConvertible, q.DocNumber, q.Status)
	}
	if mode == "" {
		mode = DefaultTaxMode(TypeInvoice)
	}
	if !ValidTaxMode(mode) {
		return Document{}, fmt.Errorf("%w: unknown tax mode %q", ErrValidation, mode)
	}

	due := issueDate.AddDate(0, 0, invoiceDueDays)
	sourceID := q.ID
	inv := Document{
		DocType:    TypeInvoice,
		CustomerID: q.CustomerID,
		ProjectID:  q.ProjectID,
		Title:      q.Title,
		IssueDate:  issueDate,
		DueDate:    &due,
		TaxRate:    q.TaxRate,
		TaxMode:    mode,
		Notes:      q.Notes,
		Status:     StatusDraft,
		SourceID:   &sourceID,
		Details:    copyDetails(q.Details),
	}
	if err := ApplyTotals(&inv); err != nil {
		return Document{}, err
	}
	return inv, nil
}

// DeriveQuotation builds a quotation draft from an issued invoice, the
// reverse of DeriveInvoice. Used when a follow-up job is quoted off a
// previously billed one.
func DeriveQuotation(inv Document, issueDate time.Time, mode TaxMode) (Document, error) {
	if inv.DocType != TypeInvoice {
		return Document{}, fmt.Errorf("%w: %s is not an invoice", ErrNotConvertible, inv.DocNumber)
	}
	if inv.Status != StatusIssued {
		return Document{}, fmt.Errorf("%w: %s is %s", ErrNotConvertible, inv.DocNumber, inv.Status)
	}
	if mode == "" {
		mode = DefaultTaxMode(TypeQuotation)
	}
	if !ValidTaxMode(mode) {
		return Document{}, fmt.Errorf("%w: unknown tax mode %q", ErrValidation, mode)
	}

	validUntil := issueDate.AddDate(0, 0, quotationValidDays)
	sourceID := inv.ID
	q := Document{
		DocType:    TypeQuotation,
		CustomerID: inv.CustomerID,
		ProjectID:  inv.ProjectID,
		Title:      inv.Title,
		IssueDate:  issueDate,
		ValidUntil: &validUntil,
		TaxRate:    inv.TaxRate,
		TaxMode:    mode,
		Notes:      inv.Notes,
		Status:     StatusDraft,
		SourceID:   &sourceID,
		Details:    copyDetails(inv.Details),
	}
	if err := ApplyTotals(&q); err != nil {
		return Document{}, err
	}
	return q, nil
}

func copyDetails(src []DocumentDetail) []DocumentDetail {
	out := make([]DocumentDetail, len(src))
	for i, d := range src {
		out[i] = DocumentDetail{
			LineNo:    d.LineNo,
			ProductID: d.ProductID,
			ItemName:  d.ItemName,
			Spec:      d.Spec,
			Quantity:  d.Quantity,
			Unit:      d.Unit,
			UnitPrice: d.UnitPrice,
		}
	}
	return out
}
