package catalog

import "strings"

// FindRequest is the payload of find_by_id_product.
type FindRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// SearchRequest is the payload of search_product.
type SearchRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Code   *string `json:"code,omitempty" validate:"omitempty,max=64"`
	Offset *int    `json:"offset,omitempty" validate:"omitempty,gte=0"`
	Limit  *int    `json:"limit,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// Filter applies the default window to r.
func (r SearchRequest) Filter() SearchFilter {
	f := SearchFilter{Limit: DefaultLimit}
	if r.Name != nil {
		f.Name = strings.TrimSpace(*r.Name)
	}
	if r.Code != nil {
		f.Code = strings.TrimSpace(*r.Code)
	}
	if r.Offset != nil {
		f.Offset = *r.Offset
	}
	if r.Limit != nil {
		f.Limit = *r.Limit
	}
	return f
}

// CreateRequest is the payload of create_product.
type CreateRequest struct {
	Name                  string  `json:"name" validate:"required,max=255"`
	Code                  string  `json:"code" validate:"required,max=64"`
	Unit                  string  `json:"unit" validate:"required,max=32"`
	DefaultPrice          float64 `json:"default_price" validate:"gte=0,lte=99999999999999"`
	StandardStockQuantity int64   `json:"standard_stock_quantity" validate:"gte=0"`
}

func (r *CreateRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	r.Unit = strings.TrimSpace(r.Unit)
}

// UpdateRequest is the payload of update_product. Omitted fields keep their
// stored value.
type UpdateRequest struct {
	ID                    int64    `json:"id" validate:"required,gt=0"`
	Name                  *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Code                  *string  `json:"code,omitempty" validate:"omitempty,min=1,max=64"`
	Unit                  *string  `json:"unit,omitempty" validate:"omitempty,min=1,max=32"`
	DefaultPrice          *float64 `json:"default_price,omitempty" validate:"omitempty,gte=0,lte=99999999999999"`
	StandardStockQuantity *int64   `json:"standard_stock_quantity,omitempty" validate:"omitempty,gte=0"`
}

func (r *UpdateRequest) trim() {
	for _, field := range []*string{r.Name, r.Code, r.Unit} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

// DeleteRequest is the payload of delete_product.
type DeleteRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}
