// Package favorites stores per-user product favorites as redis sets and
// hydrates them from the catalog on read.
package favorites

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/hivemart/hivemart/internal/catalog/products"
)

// ErrUnknownProduct indicates the product does not exist in the catalog.
var ErrUnknownProduct = errors.New("favorites: unknown product")

// ProductPort resolves product ids against the live catalog.
// *products.Service satisfies it.
type ProductPort interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

type Service struct {
	client   *redis.Client
	products ProductPort
}

func NewService(client *redis.Client, productPort ProductPort) *Service {
	return &Service{client: client, products: productPort}
}

func favoritesKey(userID int64) string {
	return "favorites:" + strconv.FormatInt(userID, 10)
}

// Add marks a product as the user's favorite. The product must exist.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			return ErrUnknownProduct
		}
		return err
	}
	return s.client.SAdd(ctx, favoritesKey(userID), productID).Err()
}

// Remove drops a product from the user's favorites. Removing an absent
// member is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	return s.client.SRem(ctx, favoritesKey(userID), productID).Err()
}

// List returns the user's favorite products. Products that have since
// left the catalog are pruned from the set.
func (s *Service) List(ctx context.Context, userID int64) ([]products.Product, error) {
	members, err := s.client.SMembers(ctx, favoritesKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]products.Product, 0, len(members))
	for _, member := range members {
		productID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			s.client.SRem(ctx, favoritesKey(userID), member)
			continue
		}
		product, err := s.products.Get(ctx, productID)
		if errors.Is(err, products.ErrNotFound) {
			s.client.SRem(ctx, favoritesKey(userID), member)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, product)
	}
	return out, nil
}
