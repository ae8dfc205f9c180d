package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/hivemart/hivemart/internal/catalog/shared"
)

// Service wraps product business rules and keeps the listing cache
// coherent with writes.
type Service struct {
	repo  Repository
	cache *ListCache
}

// NewService constructs a product service. cache may be nil in tests.
func NewService(repo Repository, cache *ListCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters = filters.Normalize()
	if s.cache == nil {
		return s.repo.List(ctx, filters)
	}
	cacheKey := FilterKey(filters.Page, filters.Limit, filters.Search, filters.CategoryID, filters.ProducerID, filters.IsActive)
	if filters.SortBy != "" || filters.SortDir != "" {
		cacheKey += ":s" + filters.SortBy + ":" + filters.SortDir
	}
	return s.cache.Fetch(ctx, cacheKey, func(ctx context.Context) ([]Product, int, error) {
		return s.repo.List(ctx, filters)
	})
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Product{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Product{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
