package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, price, category, image_url, stock`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.ImageURL, &p.Stock); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, productNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, category, image_url, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Name, p.Price, p.Category, p.ImageURL, p.Stock).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateProduct writes only the supplied columns in a single statement, so a
// concurrent stock decrement is never overwritten by a stale read.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products SET
			name = COALESCE($2, name),
			price = COALESCE($3, price),
			category = COALESCE($4, category),
			image_url = COALESCE($5, image_url),
			stock = COALESCE($6, stock)
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.Name, patch.Price, patch.Category, patch.ImageURL, patch.Stock,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, productNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// DeleteProduct hard deletes even when order items still reference the row.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return productNotFound(id)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name
		FROM categories
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if exists {
		return nil, categoryExists()
	}

	c := &domain.Category{Name: name}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&c.ID)
	if isUniqueViolation(err) {
		return nil, categoryExists()
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// UpdateCategory renames in place. Products keep whatever category text they
// already had.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name, err := domain.NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	c := &domain.Category{}
	err = r.db.QueryRowContext(ctx, `
		UPDATE categories SET name = $2
		WHERE id = $1
		RETURNING id, name
	`, id, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, categoryNotFound(id)
	}
	if isUniqueViolation(err) {
		return nil, categoryExists()
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return categoryNotFound(id)
	}
	return nil
}

func productNotFound(id int64) error {
	return domain.NotFoundf("product with id %d not found", id)
}

func categoryNotFound(id int64) error {
	return domain.NotFoundf("category with id %d not found", id)
}

func categoryExists() error {
	return domain.Conflict("category already exists")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Reset removes every order, product and user. Categories are kept.
func (r *Repository) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE order_items, orders, products, users RESTART IDENTITY`)
	if err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	return nil
}
