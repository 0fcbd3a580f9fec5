package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 缓存不存在
var ErrCacheMiss = errors.New("cache miss")

// Cache 定义通用缓存接口
type Cache interface {
	// Set 设置缓存
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get 获取缓存，并将结果 Unmarshal 到 target 中，不存在时返回 ErrCacheMiss
	Get(ctx context.Context, key string, target interface{}) error
	// Delete 删除缓存
	Delete(ctx context.Context, key string) error
}

// New 配置了 redis 时使用 redis，否则退回进程内缓存
func New(cfg config.RedisConfig) Cache {
	if cfg.Addr == "" {
		return NewMemoryCache(5*time.Minute, 10*time.Minute)
	}
	return NewRedisCache(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}))
}
