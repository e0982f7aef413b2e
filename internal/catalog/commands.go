package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/odyssey-erp/productmaster/internal/rpc"
)

// Operation names served by the catalog.
const (
	OpFindByID = "find_by_id_product"
	OpSearch   = "search_product"
	OpCreate   = "create_product"
	OpUpdate   = "update_product"
	OpDelete   = "delete_product"
)

// WireShape selects how products are encoded in responses.
type WireShape string

// Supported wire shapes.
const (
	WireFlat    WireShape = "flat"
	WireWrapped WireShape = "wrapped"
)

// ParseWireShape validates a configured shape.
func ParseWireShape(raw string) (WireShape, error) {
	switch WireShape(raw) {
	case "", WireFlat:
		return WireFlat, nil
	case WireWrapped:
		return WireWrapped, nil
	}
	return "", fmt.Errorf("unknown wire shape %q", raw)
}

// Commands exposes a Service as remote operations.
type Commands struct {
	service *Service
	shape   WireShape
}

// NewCommands binds service to the given wire shape.
func NewCommands(service *Service, shape WireShape) *Commands {
	return &Commands{service: service, shape: shape}
}

// Register installs the five product operations on srv.
func (c *Commands) Register(srv *rpc.Server) {
	srv.Handle(OpFindByID, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := rpc.Decode[FindRequest](raw)
		if err != nil {
			return nil, err
		}
		p, err := c.service.Find(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"product": c.encode(p)}, nil
	})
	srv.Handle(OpSearch, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := rpc.Decode[SearchRequest](raw)
		if err != nil {
			return nil, err
		}
		products, err := c.service.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(products))
		for _, p := range products {
			out = append(out, c.encode(p))
		}
		return map[string]any{"products": out}, nil
	})
	srv.Handle(OpCreate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := rpc.Decode[CreateRequest](raw)
		if err != nil {
			return nil, err
		}
		p, err := c.service.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"product": c.encode(p)}, nil
	})
	srv.Handle(OpUpdate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := rpc.Decode[UpdateRequest](raw)
		if err != nil {
			return nil, err
		}
		p, err := c.service.Update(ctx, req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"product": c.encode(p)}, nil
	})
	srv.Handle(OpDelete, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := rpc.Decode[DeleteRequest](raw)
		if err != nil {
			return nil, err
		}
		if err := c.service.Delete(ctx, req); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": true}, nil
	})
}

type wrapped[T any] struct {
	Value T `json:"value"`
}

type wrappedProduct struct {
	ID                    wrapped[int64]   `json:"id"`
	Name                  wrapped[string]  `json:"name"`
	Code                  wrapped[string]  `json:"code"`
	Unit                  wrapped[string]  `json:"unit"`
	DefaultPrice          wrapped[float64] `json:"default_price"`
	StandardStockQuantity wrapped[int64]   `json:"standard_stock_quantity"`
	CreatedAt             string           `json:"created_at"`
	UpdatedAt             string           `json:"updated_at"`
	DeletedAt             *string          `json:"deleted_at"`
}

const naiveTimestamp = "2006-01-02 15:04:05"

func (c *Commands) encode(p Product) any {
	if c.shape != WireWrapped {
		return p
	}
	w := wrappedProduct{
		ID:                    wrapped[int64]{p.ID},
		Name:                  wrapped[string]{p.Name},
		Code:                  wrapped[string]{p.Code},
		Unit:                  wrapped[string]{p.Unit},
		DefaultPrice:          wrapped[float64]{p.DefaultPrice},
		StandardStockQuantity: wrapped[int64]{p.StandardStockQuantity},
		CreatedAt:             p.CreatedAt.UTC().Format(naiveTimestamp),
		UpdatedAt:             p.UpdatedAt.UTC().Format(naiveTimestamp),
	}
	if p.DeletedAt != nil {
		deleted := p.DeletedAt.UTC().Format(naiveTimestamp)
		w.DeletedAt = &deleted
	}
	return w
}
