package products_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hivemart/hivemart/internal/catalog/products"
	"github.com/hivemart/hivemart/internal/catalog/shared"
)

type memoryRepo struct {
	nextID    int64
	items     map[int64]products.Product
	listCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, items: map[int64]products.Product{}}
}

func (m *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]products.Product, int, error) {
	m.listCalls++
	var out []products.Product
	for _, p := range m.items {
		if filters.CategoryID != nil && p.CategoryID != *filters.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (products.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(ctx context.Context, input products.ProductInput) (products.Product, error) {
	p := products.Product{
		ID:         m.nextID,
		Name:       input.Name,
		CategoryID: input.CategoryID,
		ProducerID: input.ProducerID,
		Price:      input.Price,
		Stock:      input.Stock,
		Images:     input.Images,
		IsActive:   true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.nextID++
	m.items[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(ctx context.Context, id int64, input products.ProductInput) error {
	p, ok := m.items[id]
	if !ok {
		return products.ErrNotFound
	}
	p.Name = input.Name
	p.Price = input.Price
	p.Stock = input.Stock
	m.items[id] = p
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return products.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newCachedService(t *testing.T) (*products.Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := newMemoryRepo()
	return products.NewService(repo, products.NewListCache(client, time.Minute)), repo
}

func TestListServesFromCache(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, products.ProductInput{Name: "Honey Jar", CategoryID: 1, ProducerID: 1, Price: 9.5})
	require.NoError(t, err)

	_, total, err := svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	callsAfterFirst := repo.listCalls
	_, _, err = svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, callsAfterFirst, repo.listCalls, "second identical listing should hit the cache")
}

func TestWriteInvalidatesListCache(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, products.ProductInput{Name: "Honey Jar", CategoryID: 1, ProducerID: 1, Price: 9.5})
	require.NoError(t, err)

	_, total, err := svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	_, err = svc.Create(ctx, products.ProductInput{Name: "Beeswax Candle", CategoryID: 1, ProducerID: 1, Price: 4})
	require.NoError(t, err)

	_, total, err = svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total, "listing after a write must reflect the new product")
}

func TestDistinctFiltersUseDistinctCacheEntries(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, products.ProductInput{Name: "Honey Jar", CategoryID: 1, ProducerID: 1, Price: 9.5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, products.ProductInput{Name: "Clay Mug", CategoryID: 2, ProducerID: 1, Price: 12})
	require.NoError(t, err)

	categoryID := int64(2)
	_, total, err := svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10, CategoryID: &categoryID})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	_, total, err = svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, _ := newCachedService(t)
	_, err := svc.Create(context.Background(), products.ProductInput{Name: "   ", CategoryID: 1, ProducerID: 1})
	require.ErrorIs(t, err, products.ErrValidation)
}
