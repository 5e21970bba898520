package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kensetsu-erp/kensetsu-erp/internal/documents"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

// CreateOrderRequest is the payload for creating a purchase order.
type CreateOrderRequest struct {
	SupplierID   int64      `json:"supplier_id" validate:"required,gt=0"`
	ProjectID    *int64     `json:"project_id,omitempty"`
	ItemName     string     `json:"item_name" validate:"required,max=200"`
	Quantity     float64    `json:"quantity" validate:"required,gt=0"`
	Unit         string     `json:"unit,omitempty" validate:"max=20"`
	UnitPrice    int64      `json:"unit_price" validate:"gte=0"`
	OrderDate    time.Time  `json:"order_date" validate:"required"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	Notes        string     `json:"notes,omitempty" validate:"max=2000"`
}

// ListOrdersRequest filters the purchase order listing.
type ListOrdersRequest struct {
	SupplierID *int64  `json:"supplier_id,omitempty"`
	ProjectID  *int64  `json:"project_id,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles the purchase order workflow.
type Service struct {
	repo     Repository
	audit    AuditPort
	validate *validator.Validate
}

// NewService constructs the purchase service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// Create stores a new order in pending.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest, actor shared.Actor) (*Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	number, err := s.repo.GenerateOrderNumber(ctx, req.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	o := Order{
		OrderNumber:  number,
		SupplierID:   req.SupplierID,
		ProjectID:    req.ProjectID,
		ItemName:     req.ItemName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		UnitPrice:    req.UnitPrice,
		Amount:       documents.LineAmount(req.Quantity, req.UnitPrice),
		OrderDate:    req.OrderDate,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
		Status:       StatusPending,
	}
	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	s.recordAudit(ctx, actor, "PURCHASE_CREATE", id, map[string]any{"order_number": number})
	return s.repo.Get(ctx, id)
}

// Order marks a pending order as placed with the supplier.
func (s *Service) Order(ctx context.Context, id int64, actor shared.Actor) (*Order, error) {
	return s.move(ctx, id, StatusOrdered, nil, actor)
}

// Receive marks a placed order as delivered.
func (s *Service) Receive(ctx context.Context, id int64, receivedDate time.Time, actor shared.Actor) (*Order, error) {
	return s.move(ctx, id, StatusReceived, &receivedDate, actor)
}

// Cancel voids a pending order. Placed orders cannot be cancelled here.
func (s *Service) Cancel(ctx context.Context, id int64, actor shared.Actor) (*Order, error) {
	return s.move(ctx, id, StatusCancelled, nil, actor)
}

func (s *Service) move(ctx context.Context, id int64, to Status, receivedDate *time.Time, actor shared.Actor) (*Order, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(existing.Status, to) {
		return nil, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidState, existing.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, existing.Status, to, receivedDate); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_"+string(to), id, nil)
	return s.repo.Get(ctx, id)
}

// Get fetches one order.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "purchase_order",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
