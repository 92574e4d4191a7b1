package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Errors returned by Repository implementations.
var (
	ErrNotFound = errors.New("product not found")
	// ErrInUse is returned when deleting a product that order line items
	// still reference.
	ErrInUse = errors.New("product is referenced by orders")
)

// Product represents a catalog item that can be attached to orders.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category string
}

// Repository defines catalog persistence. Orders reference products but
// never own them.
type Repository interface {
	// List returns all products, or only those in category when it is
	// non-empty.
	List(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	// Create persists p and sets its ID.
	Create(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) (*Product, error)
}
