package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTx runs fn in a database transaction that is committed only if fn
// succeeds. The transaction is always released.
func (r *OrderRepository) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx *sql.Tx
}

// LockProducts locks in id order so two orders over the same products cannot
// deadlock each other.
func (t *pgTx) LockProducts(ctx context.Context, ids []int64) error {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
	}
	return rows.Err()
}

func (t *pgTx) Product(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, price, category, image_url, stock
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.ImageURL, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (t *pgTx) SetStock(ctx context.Context, productID int64, stock int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock = $2
		WHERE id = $1
	`, productID, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (total_price, status)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, order.TotalPrice, order.Status).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = t.tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

// Items are joined to products with a LEFT JOIN: a deleted product yields a
// nil Product while the line itself is intact.
const itemsQuery = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_time,
		p.id, p.name, p.price, p.category, p.image_url, p.stock
	FROM order_items oi
	LEFT JOIN products p ON p.id = oi.product_id
`

func scanItem(rows *sql.Rows) (domain.OrderItem, error) {
	var (
		item   domain.OrderItem
		pID    sql.NullInt64
		pName  sql.NullString
		pPrice decimal.NullDecimal
		pCat   sql.NullString
		pImage sql.NullString
		pStock sql.NullInt64
	)
	if err := rows.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtTime,
		&pID, &pName, &pPrice, &pCat, &pImage, &pStock,
	); err != nil {
		return item, err
	}

	if pID.Valid {
		item.Product = &domain.Product{
			ID:       pID.Int64,
			Name:     pName.String,
			Price:    pPrice.Decimal,
			Category: pCat.String,
			ImageURL: pImage.String,
			Stock:    int(pStock.Int64),
		}
	}
	return item, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, total_price, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.TotalPrice, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, itemsQuery+`
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, total_price, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.TotalPrice, &order.Status, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, itemsQuery+`
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		order := orderMap[item.OrderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
