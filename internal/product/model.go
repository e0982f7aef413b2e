// Package product implements the product master screens of the web shell.
package product

import "time"

// Product is the canonical in-memory shape of a product. Wire variants are
// normalised into it by the API adapter.
type Product struct {
	ID                    int64
	Name                  string
	Code                  string
	Unit                  string
	DefaultPrice          float64
	StandardStockQuantity int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// Deleted reports whether the product is soft deleted.
func (p Product) Deleted() bool {
	return p.DeletedAt != nil
}

// Default page window of the list screen.
const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

// SearchParams filters and pages search_product.
type SearchParams struct {
	Name   string
	Code   string
	Offset int
	Limit  int
}

// Normalize applies the default page window.
func (p SearchParams) Normalize() SearchParams {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = DefaultOffset
	}
	return p
}

// Next returns the following page window.
func (p SearchParams) Next() SearchParams {
	p = p.Normalize()
	p.Offset += p.Limit
	return p
}

// Prev returns the preceding page window, clamped at the first page.
func (p SearchParams) Prev() SearchParams {
	p = p.Normalize()
	p.Offset -= p.Limit
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// CreateParams carries the fields of create_product.
type CreateParams struct {
	Name                  string
	Code                  string
	Unit                  string
	DefaultPrice          float64
	StandardStockQuantity int64
}

// UpdateParams carries a partial update. Nil fields are left untouched.
type UpdateParams struct {
	ID                    int64
	Name                  *string
	Code                  *string
	Unit                  *string
	DefaultPrice          *float64
	StandardStockQuantity *int64
}
