package documents

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals holds the computed monetary summary of a document.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// LineAmount computes the yen amount of one line, flooring fractional results
// from non-integer quantities.
func LineAmount(quantity float64, unitPrice int64) int64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromInt(unitPrice)).
		Floor().
		IntPart()
}

// ComputeTotals derives subtotal, tax and total from the line items. The sum
// of floored line amounts is the subtotal under the exclusive mode and the
// tax-inclusive total under the inclusive mode. Tax under the exclusive mode
// is rounded half up; the inclusive subtotal is floored so the tax absorbs
// the remainder. An empty detail list yields all zeros.
func ComputeTotals(details []DocumentDetail, taxRate float64, mode TaxMode) (Totals, error) {
	if !ValidTaxMode(mode) {
		return Totals{}, fmt.Errorf("%w: unknown tax mode %q", ErrValidation, mode)
	}
	if taxRate < 0 || taxRate >= 1 {
		return Totals{}, fmt.Errorf("%w: tax rate %v out of range", ErrValidation, taxRate)
	}

	var sum int64
	for _, d := range details {
		sum += LineAmount(d.Quantity, d.UnitPrice)
	}
	if sum == 0 {
		return Totals{}, nil
	}

	rate := decimal.NewFromFloat(taxRate)
	switch mode {
	case TaxExclusive:
		tax := decimal.NewFromInt(sum).Mul(rate).Round(0).IntPart()
		return Totals{Subtotal: sum, Tax: tax, Total: sum + tax}, nil
	default:
		subtotal := decimal.NewFromInt(sum).
			Div(decimal.NewFromInt(1).Add(rate)).
			Floor().
			IntPart()
		return Totals{Subtotal: subtotal, Tax: sum - subtotal, Total: sum}, nil
	}
}

// ApplyTotals recomputes line amounts and header totals in place.
func ApplyTotals(doc *Document) error {
	for i := range doc.Details {
		doc.Details[i].Amount = LineAmount(doc.Details[i].Quantity, doc.Details[i].UnitPrice)
	}
	t, err := ComputeTotals(doc.Details, doc.TaxRate, doc.TaxMode)
	if err != nil {
		return err
	}
	doc.Subtotal = t.Subtotal
	doc.Tax = t.Tax
	doc.Total = t.Total
	return nil
}
