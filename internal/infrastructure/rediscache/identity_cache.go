package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/pkg/helpers"
)

const identityPrefix = "auth:identity:"

// IdentityCache stores authenticated user snapshots in Redis as JSON.
type IdentityCache struct {
	rdb redis.Cmdable
}

func NewIdentityCache(rdb redis.Cmdable) *IdentityCache {
	return &IdentityCache{rdb: rdb}
}

func (c *IdentityCache) Get(ctx context.Context, key string) (entity.UserSnapshot, bool, error) {
	var snap entity.UserSnapshot
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, identityPrefix+key, &snap)
	if err != nil || !ok {
		return entity.UserSnapshot{}, false, err
	}
	return snap, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, key string, snap entity.UserSnapshot, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, c.rdb, identityPrefix+key, snap, ttl)
}
