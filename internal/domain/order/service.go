package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/xenking/storefront-api/internal/domain/order"

// Service enforces the order lifecycle: one active order per user,
// products attach only to existing active orders, and join rows are
// folded back into nested orders.
type Service struct {
	orders    Repository
	tracer    trace.Tracer
	lifecycle metric.Int64Counter
}

// NewService creates an order Service on top of the given repository.
func NewService(orders Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*Service, error) {
	lifecycle, err := mp.Meter(instrumentationName).Int64Counter("storefront.orders.lifecycle",
		metric.WithDescription("Order operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create lifecycle counter")
	}

	return &Service{
		orders:    orders,
		tracer:    tp.Tracer(instrumentationName),
		lifecycle: lifecycle,
	}, nil
}

// List returns every order without line items.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := s.track(ctx, "list", func(ctx context.Context) error {
		var err error
		orders, err = s.orders.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns a single order without line items.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	var o *Order
	err := s.track(ctx, "get", func(ctx context.Context) error {
		var err error
		o, err = s.orders.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Entity: EntityOrder, ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new order for userID. Creating an active order fails
// with ConflictError when the user already has one.
func (s *Service) Create(ctx context.Context, userID int64, status Status) (*Order, error) {
	var created *Order
	err := s.track(ctx, "create", func(ctx context.Context) error {
		return s.orders.InTx(ctx, func(ctx context.Context, tx Tx) error {
			if status == StatusActive {
				if err := ensureNoActive(ctx, tx, userID); err != nil {
					return err
				}
			}

			o, err := tx.Insert(ctx, userID, status)
			if err != nil {
				return writeError(err, userID)
			}
			created = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update overwrites the status and owner of order id. Moving any order to
// active fails with ConflictError while the user has an active order,
// including when that order is the one being updated.
func (s *Service) Update(ctx context.Context, id, userID int64, status Status) (*Order, error) {
	var updated *Order
	err := s.track(ctx, "update", func(ctx context.Context) error {
		return s.orders.InTx(ctx, func(ctx context.Context, tx Tx) error {
			if status == StatusActive {
				if err := ensureNoActive(ctx, tx, userID); err != nil {
					return err
				}
			}

			o, err := tx.Update(ctx, id, userID, status)
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Entity: EntityOrder, ID: id}
			}
			if err != nil {
				return writeError(err, userID)
			}
			updated = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddProduct attaches quantity units of productID to an active order.
// The product is checked before the order, so a missing product is
// reported regardless of the order's state.
func (s *Service) AddProduct(ctx context.Context, orderID, productID int64, quantity int) (*LineItem, error) {
	var item *LineItem
	err := s.track(ctx, "add_product", func(ctx context.Context) error {
		return s.orders.InTx(ctx, func(ctx context.Context, tx Tx) error {
			exists, err := tx.ProductExists(ctx, productID)
			if err != nil {
				return err
			}
			if !exists {
				return &NotFoundError{Entity: EntityProduct, ID: productID}
			}

			o, err := tx.GetForUpdate(ctx, orderID)
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Entity: EntityOrder, ID: orderID}
			}
			if err != nil {
				return err
			}
			if o.Status != StatusActive {
				return &InvalidStateError{OrderID: o.ID, Status: o.Status, Want: StatusActive}
			}

			item, err = tx.InsertLineItem(ctx, orderID, productID, quantity)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindCurrentByUserID returns the user's active order with its products,
// or nil when the user has no active order with line items.
func (s *Service) FindCurrentByUserID(ctx context.Context, userID int64) (*Order, error) {
	var current *Order
	err := s.track(ctx, "find_current", func(ctx context.Context) error {
		rows, err := s.orders.Rows(ctx, userID, StatusActive)
		if err != nil {
			return err
		}
		current = Aggregate(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// FindCompleteByUserID returns the user's completed orders with products,
// in order of first appearance.
func (s *Service) FindCompleteByUserID(ctx context.Context, userID int64) ([]Order, error) {
	var complete []Order
	err := s.track(ctx, "find_complete", func(ctx context.Context) error {
		rows, err := s.orders.Rows(ctx, userID, StatusComplete)
		if err != nil {
			return err
		}
		complete = AggregateByOrder(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return complete, nil
}

// ensureNoActive takes the user's lifecycle lock and fails when the user
// already has an active order. The lock is held until the transaction
// ends, so the caller's write cannot race another check.
func ensureNoActive(ctx context.Context, tx Tx, userID int64) error {
	if err := tx.LockUser(ctx, userID); err != nil {
		return err
	}
	active, err := tx.HasActive(ctx, userID)
	if err != nil {
		return err
	}
	if active {
		return &ConflictError{UserID: userID}
	}
	return nil
}

// writeError translates repository write sentinels into order errors.
func writeError(err error, userID int64) error {
	switch {
	case errors.Is(err, ErrActiveOrderExists):
		return &ConflictError{UserID: userID}
	case errors.Is(err, ErrUnknownUser):
		return &NotFoundError{Entity: EntityUser, ID: userID}
	default:
		return err
	}
}

// track runs fn in a span, wraps non-domain failures into StorageError
// and counts the outcome.
func (s *Service) track(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "order."+op)
	defer span.End()

	err := fn(ctx)
	if err != nil && !IsDomain(err) {
		err = &StorageError{Op: op, Err: err}
	}

	outcome := outcomeOf(err)
	s.lifecycle.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("order.outcome", outcome))
		var storage *StorageError
		if errors.As(err, &storage) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}

func outcomeOf(err error) string {
	var (
		conflict *ConflictError
		notFound *NotFoundError
		invalid  *InvalidStateError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalid):
		return "invalid_state"
	default:
		return "storage_error"
	}
}
