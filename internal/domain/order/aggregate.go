package order

// Aggregate folds join rows belonging to one order into a single Order.
// The first row supplies the id, user and status; every row contributes
// its product in row order. It returns nil when rows is empty.
//
// Orders without line items produce no join rows and are therefore never
// returned from this path.
func Aggregate(rows []Row) *Order {
	if len(rows) == 0 {
		return nil
	}

	first := rows[0]
	o := &Order{
		ID:       first.OrderID,
		UserID:   first.UserID,
		Status:   first.Status,
		Products: make([]Item, 0, len(rows)),
	}
	for _, row := range rows {
		o.Products = append(o.Products, row.Item())
	}
	return o
}

// AggregateByOrder partitions join rows by order id. Orders appear in the
// order their id is first seen; products keep row order within each order.
func AggregateByOrder(rows []Row) []Order {
	orders := make([]Order, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			i = len(orders)
			index[row.OrderID] = i
			orders = append(orders, Order{
				ID:       row.OrderID,
				UserID:   row.UserID,
				Status:   row.Status,
				Products: []Item{},
			})
		}
		orders[i].Products = append(orders[i].Products, row.Item())
	}
	return orders
}
