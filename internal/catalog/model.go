// Package catalog serves the product remote operations over PostgreSQL.
package catalog

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/productmaster/internal/platform/httpx"
)

// Product is a row of m_products.
type Product struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	Code                  string     `json:"code"`
	Unit                  string     `json:"unit"`
	DefaultPrice          float64    `json:"default_price"`
	StandardStockQuantity int64      `json:"standard_stock_quantity"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
}

// Domain errors, mapped to problem responses through httpx.
var (
	ErrNotFound   = fmt.Errorf("product: %w", httpx.ErrNotFound)
	ErrDuplicate  = fmt.Errorf("product code: %w", httpx.ErrDuplicate)
	ErrValidation = httpx.ErrValidation
)

// Search window bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// MaxDefaultPrice is the largest price the NUMERIC(18,4) column holds. The
// validate tags on the request types repeat it literally.
const MaxDefaultPrice = 99999999999999

// SearchFilter is a normalised search request.
type SearchFilter struct {
	Name   string
	Code   string
	Offset int
	Limit  int
}
