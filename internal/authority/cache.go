package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"careguard/pkg/platform/sentinel"
)

// Cache stores registry responses so a resubmission within the TTL does not
// hit the state API again. A nil Cache is valid and disables caching.
type Cache interface {
	Get(ctx context.Context, j Jurisdiction, wwccNumber string) (Response, error)
	Set(ctx context.Context, j Jurisdiction, wwccNumber string, resp Response) error
}

// RedisCache caches registry responses in Redis with a TTL. Registry data is
// sensitive, so retention is bounded by the TTL rather than evicted lazily.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache builds a registry response cache.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(j Jurisdiction, wwccNumber string) string {
	return fmt.Sprintf("wwcc:%s:%s", j, wwccNumber)
}

func (c *RedisCache) Get(ctx context.Context, j Jurisdiction, wwccNumber string) (Response, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(j, wwccNumber)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Response{}, sentinel.ErrNotFound
		}
		return Response{}, fmt.Errorf("registry cache get: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("decode cached registry response: %w", err)
	}
	return resp, nil
}

func (c *RedisCache) Set(ctx context.Context, j Jurisdiction, wwccNumber string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode registry response: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(j, wwccNumber), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("registry cache set: %w", err)
	}
	return nil
}
