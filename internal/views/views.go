// Package views maps domain entities to their JSON wire representation.
//
// Money is emitted as a JSON number carrying the exact decimal text, so
// totals reconcile with line items on the client without float rounding.
package views

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

type Product struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
	ImageURL string      `json:"image_url"`
	Stock    int         `json:"stock"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type OrderItem struct {
	ID          int64       `json:"id"`
	OrderID     int64       `json:"order_id"`
	ProductID   int64       `json:"product_id"`
	Quantity    int         `json:"quantity"`
	PriceAtTime json.Number `json:"price_at_time"`
	Product     *Product    `json:"product"`
}

type Order struct {
	ID         int64       `json:"id"`
	TotalPrice json.Number `json:"total_price"`
	Status     string      `json:"status"`
	CreatedAt  *string     `json:"created_at"`
	Items      []OrderItem `json:"items"`
}

// User deliberately has no password field.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func NewProduct(p domain.Product) Product {
	return Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    money(p.Price),
		Category: p.Category,
		ImageURL: p.ImageURL,
		Stock:    p.Stock,
	}
}

func NewProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = NewProduct(p)
	}
	return out
}

func NewCategory(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name}
}

func NewCategories(cs []domain.Category) []Category {
	out := make([]Category, len(cs))
	for i, c := range cs {
		out[i] = NewCategory(c)
	}
	return out
}

// NewOrderItem embeds the product as it is now, or null if it was deleted.
func NewOrderItem(item domain.OrderItem) OrderItem {
	v := OrderItem{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		PriceAtTime: money(item.PriceAtTime),
	}
	if item.Product != nil {
		p := NewProduct(*item.Product)
		v.Product = &p
	}
	return v
}

func NewOrder(o domain.Order) Order {
	v := Order{
		ID:         o.ID,
		TotalPrice: money(o.TotalPrice),
		Status:     o.Status,
		CreatedAt:  isoTime(o.CreatedAt),
		Items:      make([]OrderItem, len(o.Items)),
	}
	for i, item := range o.Items {
		v.Items[i] = NewOrderItem(item)
	}
	return v
}

func NewOrders(orders []domain.Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = NewOrder(o)
	}
	return out
}

func NewUser(u domain.User) User {
	return User{ID: u.ID, Email: u.Email, IsActive: u.IsActive}
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
