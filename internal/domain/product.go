package domain

import (
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Category is free text and is not
// linked to the categories table.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category string
	ImageURL string
	Stock    int
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched.
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
	ImageURL *string
	Stock    *int
}

// Apply merges the supplied fields into p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
}

const (
	MaxProductNameLen = 120
	MaxCategoryLen    = 50
	MaxImageURLLen    = 250

	// MaxStock is the largest value the INTEGER stock column holds.
	MaxStock = math.MaxInt32
)

// Validate checks the column limits, counted in characters, and rejects
// negative price or stock.
func (p *Product) Validate() error {
	switch {
	case p.Name == "":
		return BadRequest("product name is required")
	case utf8.RuneCountInString(p.Name) > MaxProductNameLen:
		return BadRequestf("product name exceeds %d characters", MaxProductNameLen)
	case p.Category == "":
		return BadRequest("product category is required")
	case utf8.RuneCountInString(p.Category) > MaxCategoryLen:
		return BadRequestf("product category exceeds %d characters", MaxCategoryLen)
	case utf8.RuneCountInString(p.ImageURL) > MaxImageURLLen:
		return BadRequestf("image_url exceeds %d characters", MaxImageURLLen)
	case p.Price.IsNegative():
		return BadRequest("price must not be negative")
	case p.Stock < 0:
		return BadRequest("stock must not be negative")
	case p.Stock > MaxStock:
		return BadRequestf("stock must not exceed %d", MaxStock)
	}
	return nil
}

// Validate checks only the supplied fields.
func (pp ProductPatch) Validate() error {
	var p Product
	p.Name, p.Category = "-", "-"
	pp.Apply(&p)
	return p.Validate()
}
