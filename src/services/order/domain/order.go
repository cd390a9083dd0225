package domain

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"go-clothing-store/src/services/identifier"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled" // only reachable through direct store edits
)

// PaymentMethodQR is the single payment channel; every order carries it.
const PaymentMethodQR = "qr"

// ErrOrderNotFound means a well-formed identifier matched no order.
var ErrOrderNotFound = errors.New("order not found")

type OrderItem struct {
	ProductID string
	Title     string
	Price     float64
	Quantity  int
}

type Order struct {
	ID              identifier.ID
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Items           []OrderItem
	Subtotal        float64
	Status          Status
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
}

// StatusTotal is one row of a status grouping: how many orders share the
// status and the unrounded sum of their subtotals.
type StatusTotal struct {
	Status  Status
	Count   int
	Revenue float64
}

// OrderStore is the Record Store collaborator for orders. Implementations own
// durability and single-document atomicity.
type OrderStore interface {
	// Insert persists order and returns the identifier the store assigned.
	Insert(ctx context.Context, order *Order) (identifier.ID, error)
	FindByID(ctx context.Context, id identifier.ID) (*Order, error)
	// List returns every order by created_at descending, ties in insertion order.
	List(ctx context.Context) ([]Order, error)
	// MarkPaid sets status, paid_at and updated_at unconditionally. It reports
	// whether a document matched.
	MarkPaid(ctx context.Context, id identifier.ID, at time.Time) (bool, error)
	// SummarizeByStatus groups orders created in [start, end) by status.
	SummarizeByStatus(ctx context.Context, start, end time.Time) ([]StatusTotal, error)
}
