package suppliers

import (
	"errors"
	"time"
)

// Supplier is a vendor goods and subcontract work are purchased from.
type Supplier struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	NameKana      string    `json:"name_kana,omitempty"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	PaymentTerms  string    `json:"payment_terms,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateSupplierRequest is the payload for registering a supplier.
type CreateSupplierRequest struct {
	Code         string `json:"code" validate:"required,max=20"`
	Name         string `json:"name" validate:"required,max=200"`
	NameKana     string `json:"name_kana,omitempty" validate:"max=200"`
	Address      string `json:"address,omitempty" validate:"max=500"`
	Phone        string `json:"phone,omitempty" validate:"max=20"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	PaymentTerms string `json:"payment_terms,omitempty" validate:"max=200"`
}

// UpdateSupplierRequest carries edits; nil fields are left unchanged.
type UpdateSupplierRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	NameKana     *string `json:"name_kana,omitempty" validate:"omitempty,max=200"`
	Address      *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	PaymentTerms *string `json:"payment_terms,omitempty" validate:"omitempty,max=200"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ListSuppliersRequest filters the supplier listing.
type ListSuppliersRequest struct {
	Query      string `json:"q,omitempty" validate:"max=200"`
	ActiveOnly bool   `json:"active_only,omitempty"`
	Limit      int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int    `json:"offset" validate:"gte=0"`
}

var (
	ErrNotFound      = errors.New("suppliers: not found")
	ErrDuplicateCode = errors.New("suppliers: code already registered")
	ErrValidation    = errors.New("suppliers: invalid input")
)
