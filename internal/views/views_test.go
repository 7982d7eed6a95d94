package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

func TestNewOrder(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	product := &domain.Product{ID: 7, Name: "Coca Cola 3L", Price: decimal.NewFromInt(3200), Category: "Bebidas", Stock: 45}

	order := domain.Order{
		ID:         1,
		TotalPrice: decimal.NewFromInt(16000),
		Status:     domain.OrderStatusCompleted,
		CreatedAt:  created,
		Items: []domain.OrderItem{
			{ID: 10, OrderID: 1, ProductID: 7, Quantity: 5, PriceAtTime: decimal.NewFromInt(3000), Product: product},
			{ID: 11, OrderID: 1, ProductID: 8, Quantity: 1, PriceAtTime: decimal.NewFromInt(1000)},
		},
	}

	data, err := json.Marshal(NewOrder(order))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, float64(16000), got["total_price"])
	assert.Equal(t, "completed", got["status"])
	assert.Equal(t, "2026-03-01T12:30:00Z", got["created_at"])

	items := got["items"].([]any)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, float64(3000), first["price_at_time"], "snapshot price, not the current product price")
	embedded := first["product"].(map[string]any)
	assert.Equal(t, float64(3200), embedded["price"])
	assert.Equal(t, "Coca Cola 3L", embedded["name"])

	second := items[1].(map[string]any)
	assert.Contains(t, second, "product")
	assert.Nil(t, second["product"])
	assert.Equal(t, float64(1), second["quantity"])
	assert.Equal(t, float64(1000), second["price_at_time"])
}

func TestNewOrder_UnsetTimestamp(t *testing.T) {
	data, err := json.Marshal(NewOrder(domain.Order{ID: 2, TotalPrice: decimal.Zero}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"total_price":0,"status":"","created_at":null,"items":[]}`, string(data))
}

func TestMoneyKeepsExactDecimal(t *testing.T) {
	p := NewProduct(domain.Product{ID: 1, Name: "Chicle", Price: decimal.RequireFromString("0.10"), Category: "Snacks"})

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":0.1`)
}

func TestNewUserOmitsPassword(t *testing.T) {
	u := domain.User{ID: 3, Email: "test_user1@test.com", PasswordHash: "$2a$10$secret", IsActive: true}

	data, err := json.Marshal(NewUser(u))
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":3,"email":"test_user1@test.com","is_active":true}`, string(data))
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}
