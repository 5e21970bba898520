package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensetsu-erp/kensetsu-erp/internal/documents"
)

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥1,234,567", FormatYen(1234567))
	assert.Equal(t, "¥0", FormatYen(0))
}

func TestRenderDocumentHTML(t *testing.T) {
	doc := &documents.Document{
		DocNumber:  "QT-2604-0001",
		DocType:    documents.TypeQuotation,
		CustomerID: 1,
		Title:      "外壁塗装工事",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		TaxRate:    0.10,
		TaxMode:    documents.TaxExclusive,
		Subtotal:   1000000,
		Tax:        100000,
		Total:      1100000,
		Details: []documents.DocumentDetail{
			{LineNo: 1, ItemName: "足場設置", Quantity: 1, Unit: "式", UnitPrice: 1000000, Amount: 1000000},
		},
	}

	html, err := RenderDocumentHTML(doc, "株式会社サンプル")
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "御見積書"))
	assert.True(t, strings.Contains(html, "QT-2604-0001"))
	assert.True(t, strings.Contains(html, "株式会社サンプル 御中"))
	assert.True(t, strings.Contains(html, "外税"))
	assert.True(t, strings.Contains(html, "消費税率 10%"))
	assert.True(t, strings.Contains(html, "¥1,100,000"))
	assert.True(t, strings.Contains(html, "2026年04月01日"))
}

func TestRenderInvoiceTitle(t *testing.T) {
	doc := &documents.Document{
		DocNumber: "INV-2605-0001",
		DocType:   documents.TypeInvoice,
		IssueDate: time.Now(),
		TaxRate:   0.10,
		TaxMode:   documents.TaxInclusive,
	}
	html, err := RenderDocumentHTML(doc, "得意先")
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "御請求書"))
	assert.True(t, strings.Contains(html, "内税"))
}
