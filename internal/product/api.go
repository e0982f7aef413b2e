package product

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/productmaster/internal/rpc"
)

// Remote operation names.
const (
	OpFindByID = "find_by_id_product"
	OpSearch   = "search_product"
	OpCreate   = "create_product"
	OpUpdate   = "update_product"
	OpDelete   = "delete_product"
)

// Operations is the product surface of the remote operation boundary as the
// screens see it.
type Operations interface {
	FindByID(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, params SearchParams) ([]Product, error)
	Create(ctx context.Context, params CreateParams) error
	Update(ctx context.Context, params UpdateParams) error
	Delete(ctx context.Context, id int64) error
}

// DefaultFindTimeout bounds a shared find_by_id_product call.
const DefaultFindTimeout = 10 * time.Second

// API adapts an rpc.Invoker to Operations, normalising wire shapes.
type API struct {
	invoker     rpc.Invoker
	finds       singleflight.Group
	findTimeout time.Duration
}

// APIOption customises an API.
type APIOption func(*API)

// WithFindTimeout bounds the remote call shared by concurrent lookups.
func WithFindTimeout(d time.Duration) APIOption {
	return func(a *API) {
		if d > 0 {
			a.findTimeout = d
		}
	}
}

// NewAPI constructs an API over invoker.
func NewAPI(invoker rpc.Invoker, opts ...APIOption) *API {
	a := &API{invoker: invoker, findTimeout: DefaultFindTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FindByID loads a live product. Concurrent lookups of the same id share one
// remote call, which outlives any single caller's cancellation.
func (a *API) FindByID(ctx context.Context, id int64) (Product, error) {
	detached := context.WithoutCancel(ctx)
	ch := a.finds.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(detached, a.findTimeout)
		defer cancel()
		var resp findByIDResponse
		if err := a.invoker.Invoke(callCtx, OpFindByID, findByIDRequest{ProductID: id}, &resp); err != nil {
			return nil, err
		}
		return resp.Product.toProduct(), nil
	})
	select {
	case <-ctx.Done():
		return Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Product{}, res.Err
		}
		return res.Val.(Product), nil
	}
}

// Search returns one page of live products.
func (a *API) Search(ctx context.Context, params SearchParams) ([]Product, error) {
	params = params.Normalize()
	req := searchRequest{Offset: &params.Offset, Limit: &params.Limit}
	if params.Name != "" {
		req.Name = &params.Name
	}
	if params.Code != "" {
		req.Code = &params.Code
	}
	var resp searchResponse
	if err := a.invoker.Invoke(ctx, OpSearch, req, &resp); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(resp.Products))
	for _, w := range resp.Products {
		products = append(products, w.toProduct())
	}
	return products, nil
}

// Create issues create_product. The created product is not returned.
func (a *API) Create(ctx context.Context, params CreateParams) error {
	return a.invoker.Invoke(ctx, OpCreate, createRequest{
		Name:                  params.Name,
		Code:                  params.Code,
		Unit:                  params.Unit,
		DefaultPrice:          params.DefaultPrice,
		StandardStockQuantity: params.StandardStockQuantity,
	}, nil)
}

// Update issues update_product with the supplied fields.
func (a *API) Update(ctx context.Context, params UpdateParams) error {
	return a.invoker.Invoke(ctx, OpUpdate, updateRequest{
		ID:                    params.ID,
		Name:                  params.Name,
		Code:                  params.Code,
		Unit:                  params.Unit,
		DefaultPrice:          params.DefaultPrice,
		StandardStockQuantity: params.StandardStockQuantity,
	}, nil)
}

// Delete soft deletes a product.
func (a *API) Delete(ctx context.Context, id int64) error {
	return a.invoker.Invoke(ctx, OpDelete, deleteRequest{ProductID: id}, nil)
}
