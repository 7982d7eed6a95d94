package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusCompleted = "completed"

type Order struct {
	ID         int64
	TotalPrice decimal.Decimal
	Status     string
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem is a line of an order. PriceAtTime is the product price captured
// when the order was created. Product is resolved at read time and is nil
// when the product has since been deleted.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	Quantity    int
	PriceAtTime decimal.Decimal
	Product     *Product
}

// Subtotal returns PriceAtTime * Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineRequest is one requested line of a new order.
type LineRequest struct {
	ProductID int64
	Quantity  int
}
