package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotalsExclusive(t *testing.T) {
	details := []DocumentDetail{
		{Quantity: 1, UnitPrice: 1000},
	}
	got, err := ComputeTotals(details, 0.10, TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 1000, Tax: 100, Total: 1100}, got)
}

func TestComputeTotalsInclusive(t *testing.T) {
	details := []DocumentDetail{
		{Quantity: 1, UnitPrice: 1100},
	}
	got, err := ComputeTotals(details, 0.10, TaxInclusive)
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 1000, Tax: 100, Total: 1100}, got)
}

func TestComputeTotalsInclusiveFloorsSubtotal(t *testing.T) {
	// 999 / 1.1 = 908.18..., subtotal floors and the tax absorbs the remainder.
	details := []DocumentDetail{{Quantity: 1, UnitPrice: 999}}
	got, err := ComputeTotals(details, 0.10, TaxInclusive)
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 908, Tax: 91, Total: 999}, got)
	assert.Equal(t, got.Total, got.Subtotal+got.Tax)
}

func TestComputeTotalsExclusiveRoundsTaxHalfUp(t *testing.T) {
	// 1005 * 0.10 = 100.5, rounds up to 101.
	details := []DocumentDetail{{Quantity: 1, UnitPrice: 1005}}
	got, err := ComputeTotals(details, 0.10, TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, int64(101), got.Tax)
	assert.Equal(t, int64(1106), got.Total)
}

func TestComputeTotalsFractionalQuantityFloorsLine(t *testing.T) {
	// 2.5 days at 12,345 yen = 30,862.5, floored to 30,862.
	assert.Equal(t, int64(30862), LineAmount(2.5, 12345))

	details := []DocumentDetail{
		{Quantity: 2.5, UnitPrice: 12345},
		{Quantity: 0.333, UnitPrice: 10000},
	}
	got, err := ComputeTotals(details, 0.10, TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, int64(30862+3330), got.Subtotal)
}

func TestComputeTotalsEmpty(t *testing.T) {
	for _, mode := range []TaxMode{TaxExclusive, TaxInclusive} {
		got, err := ComputeTotals(nil, 0.10, mode)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, got)
	}
}

func TestComputeTotalsRejectsBadInput(t *testing.T) {
	_, err := ComputeTotals(nil, 0.10, "HALF")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeTotals(nil, 1.0, TaxExclusive)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ComputeTotals(nil, -0.1, TaxExclusive)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestComputeTotalsIsPure(t *testing.T) {
	details := []DocumentDetail{{Quantity: 3, UnitPrice: 400, Amount: 999}}
	_, err := ComputeTotals(details, 0.10, TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, int64(999), details[0].Amount, "input details untouched")
}

func TestApplyTotalsRewritesLineAmounts(t *testing.T) {
	doc := Document{
		TaxRate: 0.10,
		TaxMode: TaxExclusive,
		Details: []DocumentDetail{
			{Quantity: 2, UnitPrice: 500, Amount: 1},
			{Quantity: 1, UnitPrice: 300, Amount: 2},
		},
	}
	require.NoError(t, ApplyTotals(&doc))
	assert.Equal(t, int64(1000), doc.Details[0].Amount)
	assert.Equal(t, int64(300), doc.Details[1].Amount)
	assert.Equal(t, int64(1300), doc.Subtotal)
	assert.Equal(t, int64(130), doc.Tax)
	assert.Equal(t, int64(1430), doc.Total)
}
