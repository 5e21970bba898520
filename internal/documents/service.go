package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates quotation and invoice handling.
type Service struct {
	repo     Repository
	audit    AuditPort
	taxRate  float64
	validate *validator.Validate
}

// NewService constructs the document service. taxRate is the statutory
// consumption tax rate applied to new documents.
func NewService(repo Repository, audit AuditPort, taxRate float64) *Service {
	return &Service{repo: repo, audit: audit, taxRate: taxRate, validate: validator.New()}
}

// Create stores a new draft. The tax mode defaults by document type when the
// request leaves it out; once stored it is authoritative for all totals.
func (s *Service) Create(ctx context.Context, req CreateDocumentRequest, actor shared.Actor) (*Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !ValidDocType(req.DocType) {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidation, req.DocType)
	}

	mode := DefaultTaxMode(req.DocType)
	if req.TaxMode != nil {
		if !ValidTaxMode(*req.TaxMode) {
			return nil, fmt.Errorf("%w: unknown tax mode %q", ErrValidation, *req.TaxMode)
		}
		mode = *req.TaxMode
	}

	doc := Document{
		DocType:    req.DocType,
		CustomerID: req.CustomerID,
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		IssueDate:  req.IssueDate,
		ValidUntil: req.ValidUntil,
		DueDate:    req.DueDate,
		TaxRate:    s.taxRate,
		TaxMode:    mode,
		Notes:      req.Notes,
		Status:     StatusDraft,
		Details:    detailsFromInput(req.Details),
	}
	if err := ApplyTotals(&doc); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "DOCUMENT_CREATE", id, map[string]any{"doc_number": created.DocNumber})
	return created, nil
}

// Update edits a draft, replacing the detail list when one is given, and
// recomputes the totals from the stored tax mode.
func (s *Service) Update(ctx context.Context, id int64, req UpdateDocumentRequest, actor shared.Actor) (*Document, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, ErrNotEditable
	}

	updated := *existing
	if req.CustomerID != nil {
		updated.CustomerID = *req.CustomerID
	}
	if req.ProjectID != nil {
		updated.ProjectID = req.ProjectID
	}
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.IssueDate != nil {
		updated.IssueDate = *req.IssueDate
	}
	if req.ValidUntil != nil {
		updated.ValidUntil = req.ValidUntil
	}
	if req.DueDate != nil {
		updated.DueDate = req.DueDate
	}
	if req.TaxMode != nil {
		if !ValidTaxMode(*req.TaxMode) {
			return nil, fmt.Errorf("%w: unknown tax mode %q", ErrValidation, *req.TaxMode)
		}
		updated.TaxMode = *req.TaxMode
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.Details != nil {
		updated.Details = detailsFromInput(req.Details)
	}
	if err := ApplyTotals(&updated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "DOCUMENT_UPDATE", id, nil)
	return s.repo.Get(ctx, id)
}

// Issue finalizes a draft. Issued documents are immutable except conversion.
func (s *Service) Issue(ctx context.Context, id int64, actor shared.Actor) (*Document, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotEditable, existing.DocNumber, existing.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusDraft, StatusIssued); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "DOCUMENT_ISSUE", id, map[string]any{"doc_number": existing.DocNumber})
	return s.repo.Get(ctx, id)
}

// Convert derives an invoice draft from an issued quotation and marks the
// quotation converted. The quotation's lines and totals are left untouched.
func (s *Service) Convert(ctx context.Context, id int64, req ConvertRequest, actor shared.Actor) (*Document, error) {
	quotation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	var mode TaxMode
	if req.TaxMode != nil {
		mode = *req.TaxMode
	}
	invoice, err := DeriveInvoice(*quotation, issueDate, mode)
	if err != nil {
		return nil, err
	}

	invoiceID, err := s.repo.ConvertQuotation(ctx, id, invoice)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "DOCUMENT_CONVERT", id, map[string]any{
		"invoice_id":     invoiceID,
		"invoice_number": created.DocNumber,
	})
	return created, nil
}

// Delete removes a draft with its lines.
func (s *Service) Delete(ctx context.Context, id int64, actor shared.Actor) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusDraft {
		return ErrNotEditable
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "DOCUMENT_DELETE", id, map[string]any{"doc_number": existing.DocNumber})
	return nil
}

// Get fetches one document with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns document headers matching the filter.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Preview computes totals for a hypothetical line list without persisting.
func (s *Service) Preview(details []DetailInput, mode TaxMode) (Totals, error) {
	return ComputeTotals(detailsFromInput(details), s.taxRate, mode)
}

func detailsFromInput(in []DetailInput) []DocumentDetail {
	out := make([]DocumentDetail, len(in))
	for i, d := range in {
		out[i] = DocumentDetail{
			LineNo:    i + 1,
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

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "document",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
