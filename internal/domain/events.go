package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	EventID    string           `json:"event_id"`
	OrderID    int64            `json:"order_id"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Items      []OrderEventItem `json:"items"`
	Timestamp  time.Time        `json:"timestamp"`
}

type OrderEventItem struct {
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
}
