package documents

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

type memoryDocRepo struct {
	mu     sync.Mutex
	nextID int64
	seq    map[string]int64
	docs   map[int64]Document
}

func newMemoryDocRepo() *memoryDocRepo {
	return &memoryDocRepo{nextID: 1, seq: map[string]int64{}, docs: map[int64]Document{}}
}

func (m *memoryDocRepo) Get(_ context.Context, id int64) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Details = append([]DocumentDetail(nil), d.Details...)
	return &d, nil
}

func (m *memoryDocRepo) List(_ context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, d := range m.docs {
		if req.DocType != nil && d.DocType != *req.DocType {
			continue
		}
		if req.Status != nil && d.Status != *req.Status {
			continue
		}
		if req.CustomerID != nil && d.CustomerID != *req.CustomerID {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *memoryDocRepo) Create(_ context.Context, doc Document) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(doc), nil
}

func (m *memoryDocRepo) insert(doc Document) int64 {
	doc.ID = m.nextID
	m.nextID++
	prefix := "QT"
	if doc.DocType == TypeInvoice {
		prefix = "INV"
	}
	m.seq[prefix]++
	doc.DocNumber = fmt.Sprintf("%s-%s-%04d", prefix, doc.IssueDate.Format("0601"), m.seq[prefix])
	for i := range doc.Details {
		doc.Details[i].ID = doc.ID*100 + int64(i)
		doc.Details[i].DocumentID = doc.ID
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	m.docs[doc.ID] = doc
	return doc.ID
}

func (m *memoryDocRepo) Update(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[doc.ID]
	if !ok || cur.Status != StatusDraft {
		return ErrNotEditable
	}
	doc.Status = cur.Status
	doc.DocNumber = cur.DocNumber
	doc.UpdatedAt = time.Now()
	m.docs[doc.ID] = doc
	return nil
}

func (m *memoryDocRepo) UpdateStatus(_ context.Context, id int64, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.Status != from {
		return ErrNotFound
	}
	d.Status = to
	m.docs[id] = d
	return nil
}

func (m *memoryDocRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.Status != StatusDraft {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryDocRepo) ConvertQuotation(_ context.Context, quotationID int64, invoice Document) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.docs[quotationID]
	if !ok || q.Status != StatusIssued {
		return 0, ErrAlreadyConverted
	}
	q.Status = StatusConverted
	m.docs[quotationID] = q
	return m.insert(invoice), nil
}

var clerk = shared.Actor{ID: 9, Role: shared.RoleFinance}

func newDocService() (*Service, *memoryDocRepo) {
	repo := newMemoryDocRepo()
	return NewService(repo, nil, 0.10), repo
}

func quotationRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		DocType:    TypeQuotation,
		CustomerID: 3,
		Title:      "事務所増築工事",
		IssueDate:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Details: []DetailInput{
			{ItemName: "基礎工事", Quantity: 1, Unit: "式", UnitPrice: 500000},
			{ItemName: "電気設備", Quantity: 3, Unit: "箇所", UnitPrice: 45000},
		},
	}
}

func TestCreateQuotationDefaultsAndTotals(t *testing.T) {
	svc, _ := newDocService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, quotationRequest(), clerk)
	require.NoError(t, err)
	assert.Equal(t, "QT-2604-0001", doc.DocNumber)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, TaxExclusive, doc.TaxMode, "quotations default to exclusive")
	assert.Equal(t, 0.10, doc.TaxRate)
	assert.Equal(t, int64(635000), doc.Subtotal)
	assert.Equal(t, int64(63500), doc.Tax)
	assert.Equal(t, int64(698500), doc.Total)
	require.Len(t, doc.Details, 2)
	assert.Equal(t, 1, doc.Details[0].LineNo)
	assert.Equal(t, int64(500000), doc.Details[0].Amount)
}

func TestCreateInvoiceDefaultsInclusive(t *testing.T) {
	svc, _ := newDocService()
	req := quotationRequest()
	req.DocType = TypeInvoice
	req.Details = []DetailInput{{ItemName: "工事代金", Quantity: 1, UnitPrice: 1100000}}

	doc, err := svc.Create(context.Background(), req, clerk)
	require.NoError(t, err)
	assert.Equal(t, TaxInclusive, doc.TaxMode)
	assert.Equal(t, int64(1100000), doc.Total)
	assert.Equal(t, int64(1000000), doc.Subtotal)
	assert.Equal(t, int64(100000), doc.Tax)
}

func TestCreateHonorsExplicitTaxMode(t *testing.T) {
	svc, _ := newDocService()
	req := quotationRequest()
	mode := TaxInclusive
	req.TaxMode = &mode

	doc, err := svc.Create(context.Background(), req, clerk)
	require.NoError(t, err)
	assert.Equal(t, TaxInclusive, doc.TaxMode)
}

func TestUpdateRecomputesFromStoredMode(t *testing.T) {
	svc, _ := newDocService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, quotationRequest(), clerk)
	require.NoError(t, err)

	doc, err = svc.Update(ctx, doc.ID, UpdateDocumentRequest{
		Details: []DetailInput{{ItemName: "基礎工事", Quantity: 1, UnitPrice: 1000}},
	}, clerk)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), doc.Subtotal)
	assert.Equal(t, int64(100), doc.Tax)
	assert.Equal(t, int64(1100), doc.Total)
}

func TestUpdateRejectedAfterIssue(t *testing.T) {
	svc, _ := newDocService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, quotationRequest(), clerk)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, doc.ID, clerk)
	require.NoError(t, err)

	title := "改題"
	_, err = svc.Update(ctx, doc.ID, UpdateDocumentRequest{Title: &title}, clerk)
	assert.ErrorIs(t, err, ErrNotEditable)

	err = svc.Delete(ctx, doc.ID, clerk)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestConvertFlow(t *testing.T) {
	svc, repo := newDocService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, quotationRequest(), clerk)
	require.NoError(t, err)

	// Drafts cannot be converted.
	_, err = svc.Convert(ctx, doc.ID, ConvertRequest{}, clerk)
	assert.ErrorIs(t, err, ErrNotConvertible)

	_, err = svc.Issue(ctx, doc.ID, clerk)
	require.NoError(t, err)

	issueDate := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.Convert(ctx, doc.ID, ConvertRequest{IssueDate: &issueDate}, clerk)
	require.NoError(t, err)
	assert.Equal(t, TypeInvoice, invoice.DocType)
	assert.Equal(t, "INV-2605-0001", invoice.DocNumber)
	require.NotNil(t, invoice.SourceID)
	assert.Equal(t, doc.ID, *invoice.SourceID)

	src, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, src.Status)

	// Second convert fails, no second invoice appears.
	_, err = svc.Convert(ctx, doc.ID, ConvertRequest{}, clerk)
	assert.ErrorIs(t, err, ErrAlreadyConverted)

	invType := TypeInvoice
	invoices, total, err := svc.List(ctx, ListDocumentsRequest{DocType: &invType, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, invoices, 1)
}

func TestPreview(t *testing.T) {
	svc, _ := newDocService()
	totals, err := svc.Preview([]DetailInput{{ItemName: "x", Quantity: 1, UnitPrice: 1000}}, TaxExclusive)
	require.NoError(t, err)
	assert.Equal(t, Totals{Subtotal: 1000, Tax: 100, Total: 1100}, totals)
}
