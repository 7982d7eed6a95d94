//go:build integration

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/pgtest"
)

func TestRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.Postgres(ctx, t)
	repo := NewRepository(db)

	newProduct := func(t *testing.T, name string, stock int) domain.Product {
		t.Helper()
		p := domain.Product{Name: name, Price: decimal.RequireFromString("1499.90"), Category: "Snacks", Stock: stock}
		require.NoError(t, repo.CreateProduct(ctx, &p))
		return p
	}

	t.Run("create applies defaults and lists by id", func(t *testing.T) {
		pgtest.Truncate(t, db)
		b := newProduct(t, "B", 1)
		a := newProduct(t, "A", 2)

		products, err := repo.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, b.ID, products[0].ID)
		assert.Equal(t, a.ID, products[1].ID)
		assert.Equal(t, "", products[0].ImageURL)
		assert.True(t, decimal.RequireFromString("1499.90").Equal(products[0].Price))
	})

	t.Run("partial update leaves other fields untouched", func(t *testing.T) {
		pgtest.Truncate(t, db)
		p := newProduct(t, "Galletas", 25)
		stock := 7

		updated, err := repo.UpdateProduct(ctx, p.ID, domain.ProductPatch{Stock: &stock})
		require.NoError(t, err)

		assert.Equal(t, 7, updated.Stock)
		assert.Equal(t, "Galletas", updated.Name)
		assert.Equal(t, "Snacks", updated.Category)
		assert.True(t, p.Price.Equal(updated.Price))
	})

	t.Run("missing product", func(t *testing.T) {
		pgtest.Truncate(t, db)
		stock := 1

		_, err := repo.GetProduct(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.UpdateProduct(ctx, 999, domain.ProductPatch{Stock: &stock})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteProduct(ctx, 999), domain.ErrNotFound)
	})

	t.Run("category names are unique after trimming", func(t *testing.T) {
		pgtest.Truncate(t, db)

		c, err := repo.CreateCategory(ctx, "  Bebidas ")
		require.NoError(t, err)
		assert.Equal(t, "Bebidas", c.Name)

		_, err = repo.CreateCategory(ctx, "Bebidas")
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = repo.CreateCategory(ctx, "bebidas")
		assert.NoError(t, err, "comparison is case-sensitive")

		other, err := repo.CreateCategory(ctx, "Snacks")
		require.NoError(t, err)
		_, err = repo.UpdateCategory(ctx, other.ID, "Bebidas")
		assert.ErrorIs(t, err, domain.ErrConflict)

		categories, err := repo.ListCategories(ctx)
		require.NoError(t, err)
		names := []string{}
		for _, c := range categories {
			names = append(names, c.Name)
		}
		assert.ElementsMatch(t, []string{"Bebidas", "Snacks", "bebidas"}, names)
	})

	t.Run("category rename and delete do not touch products", func(t *testing.T) {
		pgtest.Truncate(t, db)
		c, err := repo.CreateCategory(ctx, "Snacks")
		require.NoError(t, err)
		p := newProduct(t, "Papas", 3)

		_, err = repo.UpdateCategory(ctx, c.ID, "Botanas")
		require.NoError(t, err)
		require.NoError(t, repo.DeleteCategory(ctx, c.ID))

		got, err := repo.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Snacks", got.Category)
	})

	t.Run("seed demo catalog", func(t *testing.T) {
		pgtest.Truncate(t, db)

		res, err := SeedDemo(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 8, res.Products)
		assert.Equal(t, 5, res.Categories)

		require.NoError(t, repo.Reset(ctx))
		products, err := repo.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}
