package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors reported by Repository implementations.
var (
	ErrNotFound          = errors.New("order not found")
	ErrActiveOrderExists = errors.New("active order already exists")
	ErrUnknownUser       = errors.New("user does not exist")
)

// Entities named by NotFoundError.
const (
	EntityOrder   = "order"
	EntityProduct = "product"
	EntityUser    = "user"
)

// ConflictError reports that an operation would give a user a second
// active order.
type ConflictError struct {
	UserID int64
}

func (e *ConflictError) Error() string {
	return "user already has an active order"
}

// NotFoundError reports that a referenced order, product or user does
// not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidStateError reports that an order exists but is not in the status
// the operation requires.
type InvalidStateError struct {
	OrderID int64
	Status  Status
	Want    Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %d has status %q, expected %q", e.OrderID, e.Status, e.Want)
}

// StorageError wraps an unexpected failure from the persistence layer.
// It is the only order error a caller may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDomain reports whether err carries one of the order error types.
func IsDomain(err error) bool {
	var (
		conflict *ConflictError
		notFound *NotFoundError
		invalid  *InvalidStateError
		storage  *StorageError
	)
	return errors.As(err, &conflict) ||
		errors.As(err, &notFound) ||
		errors.As(err, &invalid) ||
		errors.As(err, &storage)
}
