package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// WarmupEnqueuer schedules a cache warmup after catalog mutations.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context) error
}

// Service implements the product operations.
type Service struct {
	repo     Repository
	cache    *Cache
	warmups  WarmupEnqueuer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires a Service. cache and warmups may be nil.
func NewService(repo Repository, cache *Cache, warmups WarmupEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		warmups:  warmups,
		validate: newValidator(),
		logger:   logger,
	}
}

// Find returns a live product.
func (s *Service) Find(ctx context.Context, req FindRequest) (Product, error) {
	if err := s.check(req); err != nil {
		return Product{}, err
	}
	key, err := s.cache.BuildKey(ctx, keyProduct(req.ProductID))
	if err != nil {
		s.logger.Warn("catalog cache unavailable", slog.Any("error", err))
		return s.repo.Get(ctx, req.ProductID)
	}
	var p Product
	err = s.cache.FetchJSON(ctx, key, &p, func(ctx context.Context) (interface{}, error) {
		return s.repo.Get(ctx, req.ProductID)
	})
	return p, err
}

// Search returns one page of live products ordered by id.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]Product, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	filter := req.Filter()
	key, err := s.cache.BuildKey(ctx, keySearch(filter))
	if err != nil {
		s.logger.Warn("catalog cache unavailable", slog.Any("error", err))
		return s.repo.Search(ctx, filter)
	}
	products := []Product{}
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (interface{}, error) {
		return s.repo.Search(ctx, filter)
	})
	return products, err
}

// Create inserts a product.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Product, error) {
	req.trim()
	if err := s.check(req); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return Product{}, err
	}
	s.afterMutation(ctx, "create", p.ID)
	return p, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Product, error) {
	req.trim()
	if err := s.check(req); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Update(ctx, req)
	if err != nil {
		return Product{}, err
	}
	s.afterMutation(ctx, "update", p.ID)
	return p, nil
}

// Delete soft deletes a product. Deleting an already deleted product reports
// ErrNotFound.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	if err := s.check(req); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, req.ProductID); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete", req.ProductID)
	return nil
}

// Warm loads the first search page into the cache and reports its size.
func (s *Service) Warm(ctx context.Context) (int, error) {
	products, err := s.Search(ctx, SearchRequest{})
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

func (s *Service) afterMutation(ctx context.Context, action string, id int64) {
	if _, err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump failed", slog.String("action", action), slog.Int64("id", id), slog.Any("error", err))
	}
	if s.warmups == nil {
		return
	}
	if err := s.warmups.EnqueueWarmup(ctx); err != nil {
		s.logger.Warn("enqueue catalog warmup failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
