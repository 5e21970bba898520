package customers

import (
	"errors"
	"time"
)

// Customer is a billing counterparty for quotations and invoices.
type Customer struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	NameKana      string    `json:"name_kana,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	Code          string `json:"code" validate:"required,max=20"`
	Name          string `json:"name" validate:"required,max=200"`
	NameKana      string `json:"name_kana,omitempty" validate:"max=200"`
	PostalCode    string `json:"postal_code,omitempty" validate:"max=10"`
	Address       string `json:"address,omitempty" validate:"max=500"`
	Phone         string `json:"phone,omitempty" validate:"max=20"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	ContactPerson string `json:"contact_person,omitempty" validate:"max=100"`
}

// UpdateCustomerRequest carries edits; nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=200"`
	NameKana      *string `json:"name_kana,omitempty" validate:"omitempty,max=200"`
	PostalCode    *string `json:"postal_code,omitempty" validate:"omitempty,max=10"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=100"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// ListCustomersRequest filters the customer listing. Query matches code,
// name and kana.
type ListCustomersRequest struct {
	Query      string `json:"q,omitempty" validate:"max=200"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int    `json:"offset" validate:"gte=0"`
}

var (
	ErrNotFound      = errors.New("customers: not found")
	ErrDuplicateCode = errors.New("customers: code already registered")
	ErrValidation    = errors.New("customers: invalid input")
)
