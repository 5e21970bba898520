package purchases

import (
	"errors"
	"time"
)

// Purchase order statuses.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOrdered   Status = "ORDERED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// StatusLabels maps statuses to their Japanese display labels.
var StatusLabels = map[Status]string{
	StatusPending:   "発注待ち",
	StatusOrdered:   "発注済",
	StatusReceived:  "入荷済",
	StatusCancelled: "取消",
}

// validNext is the allowed purchase order state machine.
var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusOrdered: true, StatusCancelled: true},
	StatusOrdered: {StatusReceived: true},
}

// CanTransition reports whether a purchase order may move from one status to
// another.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Order is a purchase order for materials or subcontract work. Amounts are
// whole yen.
type Order struct {
	ID           int64      `json:"id"`
	OrderNumber  string     `json:"order_number"`
	SupplierID   int64      `json:"supplier_id"`
	ProjectID    *int64     `json:"project_id,omitempty"`
	ItemName     string     `json:"item_name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit,omitempty"`
	UnitPrice    int64      `json:"unit_price"`
	Amount       int64      `json:"amount"`
	OrderDate    time.Time  `json:"order_date"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("purchases: not found")
	// ErrInvalidState occurs when a status change is not legal.
	ErrInvalidState = errors.New("purchases: invalid state change")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("purchases: invalid input")
)
