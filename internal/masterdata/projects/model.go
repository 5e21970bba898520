package projects

import (
	"errors"
	"time"
)

// Status of a construction project.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusSuspended Status = "SUSPENDED"
)

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusSuspended:
		return true
	}
	return false
}

// Project is a construction site documents and expenses can reference.
type Project struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	CustomerID int64      `json:"customer_id"`
	SiteAddr   string     `json:"site_address,omitempty"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateProjectRequest is the payload for registering a project.
type CreateProjectRequest struct {
	Code       string     `json:"code" validate:"required,max=20"`
	Name       string     `json:"name" validate:"required,max=200"`
	CustomerID int64      `json:"customer_id" validate:"required,gt=0"`
	SiteAddr   string     `json:"site_address,omitempty" validate:"max=500"`
	StartDate  time.Time  `json:"start_date" validate:"required"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// UpdateProjectRequest carries edits; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	SiteAddr  *string    `json:"site_address,omitempty" validate:"omitempty,max=500"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    *Status    `json:"status,omitempty"`
}

// ListProjectsRequest filters the project listing.
type ListProjectsRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Query      string  `json:"q,omitempty" validate:"max=200"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}

var (
	ErrNotFound      = errors.New("projects: not found")
	ErrDuplicateCode = errors.New("projects: code already registered")
	ErrValidation    = errors.New("projects: invalid input")
)
