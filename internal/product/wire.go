package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Value decodes a field that arrives either as a raw primitive or wrapped in
// a single-field value object {"value": ...}.
type Value[T any] struct {
	V T
}

// UnmarshalJSON accepts both the flat and the wrapped representation.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Value *T `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		if wrapped.Value == nil {
			return fmt.Errorf("wrapped value missing \"value\" field")
		}
		v.V = *wrapped.Value
		return nil
	}
	return json.Unmarshal(trimmed, &v.V)
}

// wireTimeLayouts lists the timestamp formats accepted from the backend.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", raw)
}

// wireProduct is the product as it crosses the remote operation boundary.
type wireProduct struct {
	ID                    Value[int64]   `json:"id"`
	Name                  Value[string]  `json:"name"`
	Code                  Value[string]  `json:"code"`
	Unit                  Value[string]  `json:"unit"`
	DefaultPrice          Value[float64] `json:"default_price"`
	StandardStockQuantity Value[int64]   `json:"standard_stock_quantity"`
	CreatedAt             wireTime       `json:"created_at"`
	UpdatedAt             wireTime       `json:"updated_at"`
	DeletedAt             *wireTime      `json:"deleted_at,omitempty"`
}

func (w wireProduct) toProduct() Product {
	p := Product{
		ID:                    w.ID.V,
		Name:                  w.Name.V,
		Code:                  w.Code.V,
		Unit:                  w.Unit.V,
		DefaultPrice:          w.DefaultPrice.V,
		StandardStockQuantity: w.StandardStockQuantity.V,
		CreatedAt:             w.CreatedAt.Time,
		UpdatedAt:             w.UpdatedAt.Time,
	}
	if w.DeletedAt != nil && !w.DeletedAt.IsZero() {
		deleted := w.DeletedAt.Time
		p.DeletedAt = &deleted
	}
	return p
}

type findByIDRequest struct {
	ProductID int64 `json:"product_id"`
}

type findByIDResponse struct {
	Product wireProduct `json:"product"`
}

type searchRequest struct {
	Name   *string `json:"name,omitempty"`
	Code   *string `json:"code,omitempty"`
	Offset *int    `json:"offset,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Products []wireProduct `json:"products"`
}

type createRequest struct {
	Name                  string  `json:"name"`
	Code                  string  `json:"code"`
	Unit                  string  `json:"unit"`
	DefaultPrice          float64 `json:"default_price"`
	StandardStockQuantity int64   `json:"standard_stock_quantity"`
}

type updateRequest struct {
	ID                    int64    `json:"id"`
	Name                  *string  `json:"name,omitempty"`
	Code                  *string  `json:"code,omitempty"`
	Unit                  *string  `json:"unit,omitempty"`
	DefaultPrice          *float64 `json:"default_price,omitempty"`
	StandardStockQuantity *int64   `json:"standard_stock_quantity,omitempty"`
}

type deleteRequest struct {
	ProductID int64 `json:"product_id"`
}
