package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Service handles customer master maintenance.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs the customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	id, err := s.repo.Create(ctx, Customer{
		Code:          req.Code,
		Name:          req.Name,
		NameKana:      req.NameKana,
		PostalCode:    req.PostalCode,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		ContactPerson: req.ContactPerson,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *existing
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.NameKana != nil {
		updated.NameKana = *req.NameKana
	}
	if req.PostalCode != nil {
		updated.PostalCode = *req.PostalCode
	}
	if req.Address != nil {
		updated.Address = *req.Address
	}
	if req.Phone != nil {
		updated.Phone = *req.Phone
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.ContactPerson != nil {
		updated.ContactPerson = *req.ContactPerson
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Deactivate retires a customer without deleting issued documents under it.
func (s *Service) Deactivate(ctx context.Context, id int64) (*Customer, error) {
	inactive := false
	return s.Update(ctx, id, UpdateCustomerRequest{IsActive: &inactive})
}
