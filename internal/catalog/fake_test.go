package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryRepository is an in-memory Repository with call counters.
type memoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*Product
	gets     int
	searches []SearchFilter
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, rows: map[int64]*Product{}}
}

func (m *memoryRepository) Get(ctx context.Context, id int64) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.rows[id]
	if !ok || p.DeletedAt != nil {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (m *memoryRepository) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, filter)
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []Product
	for _, id := range ids {
		p := m.rows[id]
		if p.DeletedAt != nil {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Code != "" && !strings.Contains(strings.ToLower(p.Code), strings.ToLower(filter.Code)) {
			continue
		}
		out = append(out, *p)
	}
	if filter.Offset >= len(out) {
		return []Product{}, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryRepository) Create(ctx context.Context, req CreateRequest) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.DeletedAt == nil && p.Code == req.Code {
			return Product{}, ErrDuplicate
		}
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &Product{
		ID:                    m.nextID,
		Name:                  req.Name,
		Code:                  req.Code,
		Unit:                  req.Unit,
		DefaultPrice:          req.DefaultPrice,
		StandardStockQuantity: req.StandardStockQuantity,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	m.rows[p.ID] = p
	m.nextID++
	return *p, nil
}

func (m *memoryRepository) Update(ctx context.Context, req UpdateRequest) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[req.ID]
	if !ok || p.DeletedAt != nil {
		return Product{}, ErrNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Code != nil {
		p.Code = *req.Code
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.DefaultPrice != nil {
		p.DefaultPrice = *req.DefaultPrice
	}
	if req.StandardStockQuantity != nil {
		p.StandardStockQuantity = *req.StandardStockQuantity
	}
	return *p, nil
}

func (m *memoryRepository) SoftDelete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func (m *memoryRepository) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

type countingEnqueuer struct {
	mu    sync.Mutex
	count int
}

func (c *countingEnqueuer) EnqueueWarmup(ctx context.Context) error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return nil
}

func (c *countingEnqueuer) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
