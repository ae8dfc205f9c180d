package favorites_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hivemart/hivemart/internal/catalog/products"
	"github.com/hivemart/hivemart/internal/favorites"
)

type stubProducts struct {
	known map[int64]products.Product
}

func (s *stubProducts) Get(ctx context.Context, id int64) (products.Product, error) {
	p, ok := s.known[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func newService(t *testing.T, known map[int64]products.Product) *favorites.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return favorites.NewService(client, &stubProducts{known: known})
}

func TestAddAndListFavorites(t *testing.T) {
	svc := newService(t, map[int64]products.Product{
		1: {ID: 1, Name: "Honey Jar"},
		2: {ID: 2, Name: "Clay Mug"},
	})
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 7, 1))
	require.NoError(t, svc.Add(ctx, 7, 2))
	require.NoError(t, svc.Add(ctx, 7, 2), "re-adding is a no-op")

	items, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newService(t, nil)
	err := svc.Add(context.Background(), 7, 123)
	require.ErrorIs(t, err, favorites.ErrUnknownProduct)
}

func TestRemoveFavorite(t *testing.T) {
	svc := newService(t, map[int64]products.Product{1: {ID: 1, Name: "Honey Jar"}})
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 7, 1))
	require.NoError(t, svc.Remove(ctx, 7, 1))
	require.NoError(t, svc.Remove(ctx, 7, 1), "removing an absent member is a no-op")

	items, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListPrunesVanishedProducts(t *testing.T) {
	known := map[int64]products.Product{
		1: {ID: 1, Name: "Honey Jar"},
		2: {ID: 2, Name: "Clay Mug"},
	}
	svc := newService(t, known)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 7, 1))
	require.NoError(t, svc.Add(ctx, 7, 2))

	delete(known, 2)

	items, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].ID)

	// the dangling member is gone on the next read as well
	items, err = svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFavoritesAreScopedPerUser(t *testing.T) {
	svc := newService(t, map[int64]products.Product{1: {ID: 1, Name: "Honey Jar"}})
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 7, 1))

	items, err := svc.List(ctx, 8)
	require.NoError(t, err)
	require.Empty(t, items)
}
