package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

// DemoProducts is the catalog loaded by `seed products`.
func DemoProducts() []domain.Product {
	return []domain.Product{
		{Name: "Coca Cola 3L", Price: decimal.NewFromInt(2500), Category: "Bebidas", Stock: 20, ImageURL: "https://www.coca-cola.com/content/dam/journey/us/en/brands/coca-cola/coca-cola-original-taste/coca-cola-original-taste-20-oz-bottle.png"},
		{Name: "Papas Lays Clásicas", Price: decimal.NewFromInt(1200), Category: "Snacks", Stock: 15, ImageURL: "https://m.media-amazon.com/images/I/81vJyb43URL._SL1500_.jpg"},
		{Name: "Leche Soprole Entera 1L", Price: decimal.NewFromInt(950), Category: "Lácteos", Stock: 30, ImageURL: "https://jumbo.vtexassets.com/arquivos/ids/621111/Leche-entera-Soprole-1-L.jpg?v=638063345472870000"},
		{Name: "Pan Hallulla (1kg)", Price: decimal.NewFromInt(2000), Category: "Panadería", Stock: 10, ImageURL: "https://mandolin.cl/wp-content/uploads/2020/06/pan-hallulla.jpg"},
		{Name: "Queso Gouda Laminado (250g)", Price: decimal.NewFromInt(2800), Category: "Lácteos", Stock: 12, ImageURL: "https://doffice.cl/wp-content/uploads/2020/09/queso-laminado-gouda.jpg"},
		{Name: "Galletas Tritón", Price: decimal.NewFromInt(800), Category: "Snacks", Stock: 25, ImageURL: "https://www.lider.cl/catalogo/images/puntosDeContacto/000000000000001004.jpg"},
		{Name: "Cerveza Escudo (Lata 470cc)", Price: decimal.NewFromInt(1000), Category: "Bebidas", Stock: 50, ImageURL: "https://jumbo.vtexassets.com/arquivos/ids/530510/Cerveza-Escudo-lata-470-cc.jpg?v=637775949540000000"},
		{Name: "Manzana Fuji (1kg)", Price: decimal.NewFromInt(1500), Category: "Frutas", Stock: 40, ImageURL: "https://www.frutas-hortalizas.com/img/fru_horta/126_manzana_fuji.jpg"},
	}
}

type SeedResult struct {
	Products   int
	Categories int
}

// SeedDemo inserts DemoProducts and the categories they use. Categories that
// already exist are skipped.
func SeedDemo(ctx context.Context, store Store) (SeedResult, error) {
	var res SeedResult
	seen := map[string]bool{}

	for _, p := range DemoProducts() {
		if !seen[p.Category] {
			seen[p.Category] = true
			_, err := store.CreateCategory(ctx, p.Category)
			switch {
			case err == nil:
				res.Categories++
			case !errors.Is(err, domain.ErrConflict):
				return res, fmt.Errorf("seed category %q: %w", p.Category, err)
			}
		}

		if err := store.CreateProduct(ctx, &p); err != nil {
			return res, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		res.Products++
	}

	return res, nil
}
