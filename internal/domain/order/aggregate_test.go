package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Aggregate(nil))
		assert.Nil(t, Aggregate([]Row{}))
	})

	t.Run("products in row order", func(t *testing.T) {
		rows := []Row{
			{OrderID: 1, UserID: 10, Status: StatusActive, ProductID: 100, Quantity: 2},
			{OrderID: 1, UserID: 10, Status: StatusActive, ProductID: 200, Quantity: 3},
		}

		o := Aggregate(rows)
		require.NotNil(t, o)
		assert.Equal(t, int64(1), o.ID)
		assert.Equal(t, int64(10), o.UserID)
		assert.Equal(t, StatusActive, o.Status)
		assert.Equal(t, []Item{
			{ProductID: 100, Quantity: 2},
			{ProductID: 200, Quantity: 3},
		}, o.Products)
	})

	t.Run("first row seeds scalars", func(t *testing.T) {
		rows := []Row{
			{OrderID: 7, UserID: 1, Status: StatusActive, ProductID: 1, Quantity: 1},
			{OrderID: 7, UserID: 1, Status: StatusActive, ProductID: 1, Quantity: 4},
		}

		o := Aggregate(rows)
		require.NotNil(t, o)
		assert.Equal(t, int64(7), o.ID)
		// Duplicate products stay separate line items.
		assert.Len(t, o.Products, 2)
	})
}

func TestAggregateByOrder(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		orders := AggregateByOrder(nil)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	t.Run("first appearance order", func(t *testing.T) {
		rows := []Row{
			{OrderID: 1, UserID: 10, Status: StatusComplete, ProductID: 100, Quantity: 1},
			{OrderID: 2, UserID: 10, Status: StatusComplete, ProductID: 200, Quantity: 5},
			{OrderID: 1, UserID: 10, Status: StatusComplete, ProductID: 300, Quantity: 2},
		}

		orders := AggregateByOrder(rows)
		require.Len(t, orders, 2)

		assert.Equal(t, int64(1), orders[0].ID)
		assert.Equal(t, []Item{
			{ProductID: 100, Quantity: 1},
			{ProductID: 300, Quantity: 2},
		}, orders[0].Products)

		assert.Equal(t, int64(2), orders[1].ID)
		assert.Equal(t, []Item{{ProductID: 200, Quantity: 5}}, orders[1].Products)
	})

	t.Run("ids out of numeric order", func(t *testing.T) {
		rows := []Row{
			{OrderID: 9, UserID: 1, Status: StatusComplete, ProductID: 1, Quantity: 1},
			{OrderID: 3, UserID: 1, Status: StatusComplete, ProductID: 2, Quantity: 1},
			{OrderID: 5, UserID: 1, Status: StatusComplete, ProductID: 3, Quantity: 1},
			{OrderID: 3, UserID: 1, Status: StatusComplete, ProductID: 4, Quantity: 1},
		}

		orders := AggregateByOrder(rows)
		ids := make([]int64, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		assert.Equal(t, []int64{9, 3, 5}, ids)
		assert.Len(t, orders[1].Products, 2)
	})
}
