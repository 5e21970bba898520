package projects

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Service handles project master maintenance.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs the project service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	id, err := s.repo.Create(ctx, Project{
		Code:       req.Code,
		Name:       req.Name,
		CustomerID: req.CustomerID,
		SiteAddr:   req.SiteAddr,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Status:     StatusActive,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
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
	if req.SiteAddr != nil {
		updated.SiteAddr = *req.SiteAddr
	}
	if req.StartDate != nil {
		updated.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		updated.EndDate = req.EndDate
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		updated.Status = *req.Status
	}
	if updated.EndDate != nil && updated.EndDate.Before(updated.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}
