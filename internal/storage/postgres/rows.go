package postgres

import (
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront-api/internal/domain/order"
)

// Row mappers. Each one scans the column list of its query, in order, into
// a domain record.

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &status)
	o.Status = order.Status(status)
	return o, err
}

func scanRow(row pgx.CollectableRow) (order.Row, error) {
	var (
		r      order.Row
		status string
	)
	err := row.Scan(&r.OrderID, &r.UserID, &status, &r.ProductID, &r.Quantity)
	r.Status = order.Status(status)
	return r, err
}

func scanLineItem(row pgx.CollectableRow) (order.LineItem, error) {
	var item order.LineItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity)
	return item, err
}
