package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, status`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY id`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderForUpdateSQL = getOrderSQL + ` FOR UPDATE`

	insertOrderSQL = `INSERT INTO orders (user_id, status) VALUES ($1, $2) RETURNING ` + orderColumns

	updateOrderSQL = `UPDATE orders SET status = $1, user_id = $2 WHERE id = $3 RETURNING ` + orderColumns

	hasActiveOrderSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE user_id = $1 AND status = 'active')`

	// Transaction-scoped advisory lock keyed by user id. Released on commit
	// or rollback.
	lockUserSQL = `SELECT pg_advisory_xact_lock($1)`

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	insertLineItemSQL = `INSERT INTO order_products (order_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id, order_id, product_id, quantity`

	orderRowsSQL = `SELECT o.id, o.user_id, o.status, p.id, op.quantity
		FROM orders AS o
		INNER JOIN order_products AS op ON op.order_id = o.id
		INNER JOIN products AS p ON p.id = op.product_id
		WHERE o.user_id = $1 AND o.status = $2
		ORDER BY o.id, op.id`

	ordersOneActivePerUser = "orders_one_active_per_user"
	ordersUserIDFkey       = "orders_user_id_fkey"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// List returns all orders ordered by ID.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Get returns a single order without line items.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	return getOrder(ctx, r.pool, getOrderSQL, id)
}

// Rows returns the inner join of the user's orders in status with their
// line items and products.
func (r *OrderRepository) Rows(ctx context.Context, userID int64, status order.Status) ([]order.Row, error) {
	rows, err := r.pool.Query(ctx, orderRowsSQL, userID, string(status))
	if err != nil {
		return nil, errors.Wrapf(err, "query %s order rows for user %d", status, userID)
	}
	return pgx.CollectRows(rows, scanRow)
}

// InTx runs fn inside a read-committed transaction.
func (r *OrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &orderTx{tx: tx})
	})
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getOrder(ctx context.Context, q querier, sql string, id int64) (*order.Order, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	return &o, nil
}

var _ order.Tx = (*orderTx)(nil)

type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) LockUser(ctx context.Context, userID int64) error {
	if _, err := t.tx.Exec(ctx, lockUserSQL, userID); err != nil {
		return errors.Wrapf(err, "lock user %d", userID)
	}
	return nil
}

func (t *orderTx) HasActive(ctx context.Context, userID int64) (bool, error) {
	var active bool
	if err := t.tx.QueryRow(ctx, hasActiveOrderSQL, userID).Scan(&active); err != nil {
		return false, errors.Wrapf(err, "check active order for user %d", userID)
	}
	return active, nil
}

func (t *orderTx) Insert(ctx context.Context, userID int64, status order.Status) (*order.Order, error) {
	rows, err := t.tx.Query(ctx, insertOrderSQL, userID, string(status))
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, mapOrderWriteError(err, "insert order")
	}
	return &o, nil
}

func (t *orderTx) Update(ctx context.Context, id, userID int64, status order.Status) (*order.Order, error) {
	rows, err := t.tx.Query(ctx, updateOrderSQL, string(status), userID, id)
	if err != nil {
		return nil, errors.Wrapf(err, "update order %d", id)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, mapOrderWriteError(err, "update order")
	}
	return &o, nil
}

func (t *orderTx) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, productExistsSQL, productID).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check product %d", productID)
	}
	return exists, nil
}

func (t *orderTx) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return getOrder(ctx, t.tx, getOrderForUpdateSQL, id)
}

func (t *orderTx) InsertLineItem(ctx context.Context, orderID, productID int64, quantity int) (*order.LineItem, error) {
	rows, err := t.tx.Query(ctx, insertLineItemSQL, orderID, productID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "insert line item")
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanLineItem)
	if err != nil {
		return nil, errors.Wrapf(err, "insert line item for order %d", orderID)
	}
	return &item, nil
}

// mapOrderWriteError turns constraint violations on orders into the
// repository sentinels the order service understands.
func mapOrderWriteError(err error, op string) error {
	switch {
	case constraintViolation(err, codeUniqueViolation, ordersOneActivePerUser):
		return order.ErrActiveOrderExists
	case constraintViolation(err, codeForeignKeyViolation, ordersUserIDFkey):
		return order.ErrUnknownUser
	default:
		return errors.Wrap(err, op)
	}
}
