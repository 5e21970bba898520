package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the expense claim workflow.
type Service struct {
	repo        Repository
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	validate    *validator.Validate
}

// NewService constructs the expense service.
func NewService(repo Repository, audit AuditPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, validate: validator.New()}
}

// Create stores a new claim in draft owned by the actor.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest, actor shared.Actor) (*Expense, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}

	number, err := s.repo.GenerateClaimNumber(ctx, req.ExpenseDate)
	if err != nil {
		return nil, fmt.Errorf("generate claim number: %w", err)
	}

	e := Expense{
		ClaimNumber:   number,
		ApplicantID:   actor.ID,
		Department:    req.Department,
		ExpenseDate:   req.ExpenseDate,
		ReceiptDate:   req.ReceiptDate,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Purpose:       req.Purpose,
		Status:        StatusDraft,
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.recordAudit(ctx, actor, "EXPENSE_CREATE", id, map[string]any{"claim_number": number})
	return s.repo.Get(ctx, id)
}

// Update applies content edits; allowed only for the owner in draft/rejected.
func (s *Service) Update(ctx context.Context, id int64, req UpdateExpenseRequest, actor shared.Actor) (*Expense, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(*existing, ActionEdit, actor, ""); err != nil {
		return nil, err
	}

	updated := *existing
	if req.Department != nil {
		updated.Department = *req.Department
	}
	if req.ExpenseDate != nil {
		updated.ExpenseDate = *req.ExpenseDate
	}
	if req.ReceiptDate != nil {
		updated.ReceiptDate = *req.ReceiptDate
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.Category != nil {
		if !ValidCategory(*req.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *req.Category)
		}
		updated.Category = *req.Category
	}
	if req.PaymentMethod != nil {
		if !ValidPaymentMethod(*req.PaymentMethod) {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, *req.PaymentMethod)
		}
		updated.PaymentMethod = *req.PaymentMethod
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Purpose != nil {
		updated.Purpose = *req.Purpose
	}

	if err := s.repo.Update(ctx, id, updated); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "EXPENSE_UPDATE", id, nil)
	return s.repo.Get(ctx, id)
}

// Submit moves a draft to submitted.
func (s *Service) Submit(ctx context.Context, id int64, actor shared.Actor) (*Expense, error) {
	return s.act(ctx, id, ActionSubmit, actor, "", "")
}

// Approve moves a submitted claim to approved and logs the decision.
func (s *Service) Approve(ctx context.Context, id int64, actor shared.Actor, comment string) (*Expense, error) {
	return s.act(ctx, id, ActionApprove, actor, comment, "")
}

// Reject moves a submitted claim to rejected; a reason is mandatory.
func (s *Service) Reject(ctx context.Context, id int64, actor shared.Actor, reason string) (*Expense, error) {
	return s.act(ctx, id, ActionReject, actor, reason, "")
}

// Settle marks an approved claim as paid out. idemKey guards against double
// settlement from retried requests; empty key skips the check.
func (s *Service) Settle(ctx context.Context, id int64, actor shared.Actor, comment, idemKey string) (*Expense, error) {
	return s.act(ctx, id, ActionSettle, actor, comment, idemKey)
}

func (s *Service) act(ctx context.Context, id int64, action Action, actor shared.Actor, comment, idemKey string) (*Expense, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	target, err := Transition(*existing, action, actor, comment)
	if err != nil {
		return nil, err
	}

	if idemKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idemKey, "expenses"); err != nil {
			return nil, err
		}
	}

	var approval *Approval
	if RecordsApproval(action) {
		approval = &Approval{
			ExpenseID:       id,
			ApproverID:      actor.ID,
			ResultingStatus: target,
			Comment:         comment,
			At:              time.Now(),
		}
	}

	if err := s.repo.Transition(ctx, id, existing.Status, target, approval); err != nil {
		if idemKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, idemKey)
		}
		return nil, err
	}

	s.recordAudit(ctx, actor, "EXPENSE_"+string(target), id, map[string]any{"action": string(action)})
	return s.repo.Get(ctx, id)
}

// Delete removes a claim; permitted only for the owner while in draft.
func (s *Service) Delete(ctx context.Context, id int64, actor shared.Actor) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ApplicantID != actor.ID && !actor.Is(shared.RoleAdmin) {
		return fmt.Errorf("%w: only the applicant may delete", ErrForbidden)
	}
	if !CanDelete(*existing) {
		return fmt.Errorf("%w: cannot delete from %s", ErrInvalidTransition, existing.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "EXPENSE_DELETE", id, nil)
	return nil
}

// AttachReceipt stores the uploaded receipt URL; owner only, while editable.
func (s *Service) AttachReceipt(ctx context.Context, id int64, url string, actor shared.Actor) (*Expense, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(*existing, ActionEdit, actor, ""); err != nil {
		return nil, err
	}
	if err := s.repo.SetReceiptURL(ctx, id, url); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "EXPENSE_RECEIPT", id, map[string]any{"url": url})
	return s.repo.Get(ctx, id)
}

// Get fetches one claim; applicants may only see their own.
func (s *Service) Get(ctx context.Context, id int64, actor shared.Actor) (*Expense, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == shared.RoleApplicant && e.ApplicantID != actor.ID {
		return nil, ErrNotFound
	}
	return e, nil
}

// List returns claims visible to the actor. Applicants are scoped to their own.
func (s *Service) List(ctx context.Context, req ListExpensesRequest, actor shared.Actor) ([]Expense, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if actor.Role == shared.RoleApplicant {
		req.ApplicantID = &actor.ID
	}
	return s.repo.List(ctx, req)
}

// Approvals returns the decision log for one claim.
func (s *Service) Approvals(ctx context.Context, id int64, actor shared.Actor) ([]Approval, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.repo.ListApprovals(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "expense",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
