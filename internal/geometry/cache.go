package geometry

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss：缓存未命中
var ErrCacheMiss = errors.New("geometry: cache miss")

// RawCache：拓扑原始字节缓存
// 约束：只缓存源字节而非解码结果，解码规则变化时无需清理缓存
type RawCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, b []byte, ttl time.Duration) error
}

// RedisCache：基于 Redis 的原始字节缓存，跨进程重启复用已下载的拓扑
type RedisCache struct {
	rc *redis.Client
}

// NewRedisCache：rc 为 nil 时返回 nil，调用方据此跳过缓存
func NewRedisCache(rc *redis.Client) *RedisCache {
	if rc == nil {
		return nil
	}
	return &RedisCache{rc: rc}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rc.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, b []byte, ttl time.Duration) error {
	return c.rc.Set(ctx, key, b, ttl).Err()
}
