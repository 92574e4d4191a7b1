package order

import (
	"context"
	"math"
)

// Status is the lifecycle state of an order. Only StatusActive and
// StatusComplete carry meaning; other values are stored as given.
type Status string

// Known order statuses.
const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// Known reports whether s is one of the statuses the lifecycle understands.
func (s Status) Known() bool {
	return s == StatusActive || s == StatusComplete
}

// Order is a user's order. Products is nil when the order was loaded
// without its line items (List, Get) and non-nil when it was aggregated
// from join rows.
type Order struct {
	ID       int64
	UserID   int64
	Status   Status
	Products []Item
}

// Item is a product and quantity attached to an aggregated order.
type Item struct {
	ProductID int64
	Quantity  int
}

// MaxQuantity is the largest quantity a line item column can hold.
const MaxQuantity = math.MaxInt32

// LineItem is a persisted product attachment, as returned by AddProduct.
type LineItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
}

// Row is one flat result of joining orders, line items and products.
type Row struct {
	OrderID   int64
	UserID    int64
	Status    Status
	ProductID int64
	Quantity  int
}

// Item returns the product part of the row.
func (r Row) Item() Item {
	return Item{ProductID: r.ProductID, Quantity: r.Quantity}
}

// Repository defines persistence operations for orders.
//
// Reads run directly against the store. Every lifecycle mutation runs
// inside InTx so that its precondition checks and writes commit together.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	// Get returns ErrNotFound when no order has the given id.
	Get(ctx context.Context, id int64) (*Order, error)
	// Rows returns join rows for the user's orders in the given status,
	// ordered by order id then line item insertion.
	Rows(ctx context.Context, userID int64, status Status) ([]Row, error)
	// InTx runs fn in a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of operations available inside a lifecycle transaction.
type Tx interface {
	// LockUser blocks until no other transaction holds the lifecycle lock
	// for userID. The lock is released when the transaction ends.
	LockUser(ctx context.Context, userID int64) error
	HasActive(ctx context.Context, userID int64) (bool, error)
	// Insert returns ErrActiveOrderExists when the store rejects a second
	// active order and ErrUnknownUser when the user does not exist.
	Insert(ctx context.Context, userID int64, status Status) (*Order, error)
	// Update returns ErrNotFound when no order has the given id. It fails
	// like Insert on uniqueness and user reference violations.
	Update(ctx context.Context, id, userID int64, status Status) (*Order, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
	// GetForUpdate loads the order and locks its row until the transaction
	// ends. It returns ErrNotFound when no order has the given id.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	InsertLineItem(ctx context.Context, orderID, productID int64, quantity int) (*LineItem, error)
}
