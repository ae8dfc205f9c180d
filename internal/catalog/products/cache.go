package products

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const listVersionKey = "products:list:version"

// ListCache caches product listing pages in redis. Invalidation bumps a
// version counter so stale pages expire without key scans. A
// singleflight group collapses concurrent misses for the same page.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

type cachedPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

func (c *ListCache) key(ctx context.Context, cacheKey string) (string, error) {
	version, err := c.client.Get(ctx, listVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("products:list:v%d:%s", version, cacheKey), nil
}

// Fetch returns the cached page for cacheKey, loading it via load on a
// miss. Cache failures degrade to a direct load.
func (c *ListCache) Fetch(ctx context.Context, cacheKey string, load func(context.Context) ([]Product, int, error)) ([]Product, int, error) {
	key, err := c.key(ctx, cacheKey)
	if err != nil {
		return load(ctx)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var page cachedPage
		if jsonErr := json.Unmarshal(raw, &page); jsonErr == nil {
			return page.Items, page.Total, nil
		}
	} else if err != redis.Nil {
		return load(ctx)
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		items, total, err := load(ctx)
		if err != nil {
			return nil, err
		}
		page := cachedPage{Items: items, Total: total}
		if encoded, err := json.Marshal(page); err == nil {
			c.client.Set(ctx, key, encoded, c.ttl)
		}
		return page, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := result.(cachedPage)
	return page.Items, page.Total, nil
}

// Invalidate bumps the listing version so every cached page is bypassed.
func (c *ListCache) Invalidate(ctx context.Context) {
	c.client.Incr(ctx, listVersionKey)
}

// FilterKey derives a stable cache key fragment from listing parameters.
func FilterKey(page, limit int, search string, categoryID, producerID *int64, isActive *bool) string {
	key := strconv.Itoa(page) + ":" + strconv.Itoa(limit) + ":" + search
	if categoryID != nil {
		key += ":c" + strconv.FormatInt(*categoryID, 10)
	}
	if producerID != nil {
		key += ":p" + strconv.FormatInt(*producerID, 10)
	}
	if isActive != nil {
		key += ":a" + strconv.FormatBool(*isActive)
	}
	return key
}
