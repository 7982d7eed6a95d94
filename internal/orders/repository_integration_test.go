//go:build integration

package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/minimarket-pos/internal/catalog"
	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/pgtest"
)

func TestOrderRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.Postgres(ctx, t)
	products := catalog.NewRepository(db)
	svc := newTestService(t, NewOrderRepository(db), nil)

	newProduct := func(t *testing.T, price string, stock int) domain.Product {
		t.Helper()
		p := domain.Product{Name: "Coca Cola 3L", Price: decimal.RequireFromString(price), Category: "Bebidas", Stock: stock}
		require.NoError(t, products.CreateProduct(ctx, &p))
		return p
	}

	stockOf := func(t *testing.T, id int64) int {
		t.Helper()
		p, err := products.GetProduct(ctx, id)
		require.NoError(t, err)
		return p.Stock
	}

	countOrders := func(t *testing.T) int {
		t.Helper()
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n))
		return n
	}

	t.Run("creates order and decrements stock", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "3000", 8)

		order, err := svc.Create(ctx, []domain.LineRequest{{ProductID: a.ID, Quantity: 5}})
		require.NoError(t, err)

		assert.Equal(t, 3, stockOf(t, a.ID))
		assert.Equal(t, "15000", order.TotalPrice.String())
		assert.Equal(t, domain.OrderStatusCompleted, order.Status)
		assert.False(t, order.CreatedAt.IsZero())
		require.Len(t, order.Items, 1)
		require.NotNil(t, order.Items[0].Product)
		assert.Equal(t, 3, order.Items[0].Product.Stock)
	})

	t.Run("second line over remaining stock rolls back", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "3000", 8)

		_, err := svc.Create(ctx, []domain.LineRequest{{ProductID: a.ID, Quantity: 5}, {ProductID: a.ID, Quantity: 5}})

		assert.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Equal(t, 8, stockOf(t, a.ID))
		assert.Zero(t, countOrders(t))
	})

	t.Run("unknown product rolls back", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "3000", 8)

		_, err := svc.Create(ctx, []domain.LineRequest{{ProductID: a.ID, Quantity: 2}, {ProductID: a.ID + 100, Quantity: 1}})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 8, stockOf(t, a.ID))
		assert.Zero(t, countOrders(t))
	})

	t.Run("totals are exact decimals", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "0.10", 100)
		b := newProduct(t, "0.20", 100)

		order, err := svc.Create(ctx, []domain.LineRequest{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}})
		require.NoError(t, err)

		assert.Equal(t, "0.3", order.TotalPrice.String())
	})

	t.Run("deleted product reads back as nil", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "3000", 8)
		created, err := svc.Create(ctx, []domain.LineRequest{{ProductID: a.ID, Quantity: 2}})
		require.NoError(t, err)

		require.NoError(t, products.DeleteProduct(ctx, a.ID))

		order, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Nil(t, order.Items[0].Product)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, "3000", order.Items[0].PriceAtTime.String())

		all, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Nil(t, all[0].Items[0].Product)
	})

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		pgtest.Truncate(t, db)
		a := newProduct(t, "1000", 10)
		b := newProduct(t, "500", 10)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				lines := []domain.LineRequest{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
				if i%2 == 1 {
					lines[0], lines[1] = lines[1], lines[0]
				}
				if _, err := svc.Create(ctx, lines); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, succeeded)
		assert.Equal(t, 0, stockOf(t, a.ID))
		assert.Equal(t, 0, stockOf(t, b.ID))
		assert.Equal(t, 10, countOrders(t))
	})
}
