package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kensetsu-erp/kensetsu-erp/internal/documents"
	"github.com/kensetsu-erp/kensetsu-erp/internal/masterdata/customers"
	"github.com/kensetsu-erp/kensetsu-erp/internal/platform/httpx"
)

var docTitles = map[documents.DocType]string{
	documents.TypeQuotation: "御見積書",
	documents.TypeInvoice:   "御請求書",
}

const documentTemplate = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<style>
body { font-family: "Noto Sans JP", sans-serif; font-size: 12px; }
h1 { text-align: center; letter-spacing: 1em; }
table { width: 100%; border-collapse: collapse; margin-top: 1em; }
th, td { border: 1px solid #333; padding: 4px 8px; }
th { background: #eee; }
td.num { text-align: right; }
.totals td { font-weight: bold; }
.meta { margin-top: 1em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
<p>文書番号: {{.Doc.DocNumber}}<br>発行日: {{.Doc.IssueDate.Format "2006年01月02日"}}</p>
<p>{{.CustomerName}} 御中</p>
<p>件名: {{.Doc.Title}}</p>
<p>税区分: {{.TaxModeLabel}}（消費税率 {{.TaxRatePercent}}%）</p>
</div>
<table>
<tr><th>No.</th><th>項目</th><th>仕様</th><th>数量</th><th>単位</th><th>単価</th><th>金額</th></tr>
{{range .Doc.Details}}
<tr>
<td class="num">{{.LineNo}}</td>
<td>{{.ItemName}}</td>
<td>{{.Spec}}</td>
<td class="num">{{.Quantity}}</td>
<td>{{.Unit}}</td>
<td class="num">{{yen .UnitPrice}}</td>
<td class="num">{{yen .Amount}}</td>
</tr>
{{end}}
<tr class="totals"><td colspan="6">小計</td><td class="num">{{yen .Doc.Subtotal}}</td></tr>
<tr class="totals"><td colspan="6">消費税</td><td class="num">{{yen .Doc.Tax}}</td></tr>
<tr class="totals"><td colspan="6">合計</td><td class="num">{{yen .Doc.Total}}</td></tr>
</table>
{{if .Doc.Notes}}<p class="meta">備考: {{.Doc.Notes}}</p>{{end}}
</body>
</html>`

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders a whole-yen amount with grouping, e.g. ¥1,234,567.
func FormatYen(v int64) string {
	return yenPrinter.Sprintf("¥%d", v)
}

var docTmpl = template.Must(template.New("document").Funcs(template.FuncMap{
	"yen": FormatYen,
}).Parse(documentTemplate))

// CustomerLookup resolves customer names for the document header.
type CustomerLookup interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// RenderDocumentHTML produces the printable HTML for a quotation or invoice.
func RenderDocumentHTML(doc *documents.Document, customerName string) (string, error) {
	data := struct {
		Title          string
		Doc            *documents.Document
		CustomerName   string
		TaxModeLabel   string
		TaxRatePercent string
	}{
		Title:          docTitles[doc.DocType],
		Doc:            doc,
		CustomerName:   customerName,
		TaxModeLabel:   documents.TaxModeLabels[doc.TaxMode],
		TaxRatePercent: strconv.FormatFloat(doc.TaxRate*100, 'f', -1, 64),
	}
	var buf bytes.Buffer
	if err := docTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DocumentPDFHandler serves rendered PDFs for documents.
type DocumentPDFHandler struct {
	logger    *slog.Logger
	docs      *documents.Service
	customers CustomerLookup
	renderer  *Client
}

// NewDocumentPDFHandler constructs the PDF handler.
func NewDocumentPDFHandler(logger *slog.Logger, docs *documents.Service, customers CustomerLookup, renderer *Client) *DocumentPDFHandler {
	return &DocumentPDFHandler{logger: logger, docs: docs, customers: customers, renderer: renderer}
}

// MountRoutes attaches the PDF route.
func (h *DocumentPDFHandler) MountRoutes(r chi.Router) {
	r.Get("/documents/{id}/pdf", h.renderPDF)
}

func (h *DocumentPDFHandler) renderPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	doc, err := h.docs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		httpx.RespondError(w, err)
		return
	}

	customerName := fmt.Sprintf("顧客 #%d", doc.CustomerID)
	if c, err := h.customers.Get(r.Context(), doc.CustomerID); err == nil {
		customerName = c.Name
	}

	html, err := RenderDocumentHTML(doc, customerName)
	if err != nil {
		h.logger.Error("render document html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.renderer.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render document pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "pdf renderer unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.DocNumber+".pdf"))
	_, _ = w.Write(pdf)
}
