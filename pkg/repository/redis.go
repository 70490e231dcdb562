package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/config"
	"github.com/example/localhands/pkg/models"
)

const (
	shopCacheTTL     = 5 * time.Minute
	categoryCacheTTL = 10 * time.Minute
	categoriesKey    = "categories"
)

// Cache is a best-effort Redis read cache for the public hot paths:
// shop-by-slug and the category list. Cache failures are logged and treated
// as misses; mutations invalidate the affected keys. Users are never cached
// so role and active-flag changes take effect on the next request.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCache(cfg *config.RedisConfig, logger *zap.Logger) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		logger: logger,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) getJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) drop(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func shopKey(slug string) string {
	return fmt.Sprintf("shop:slug:%s", slug)
}

func (c *Cache) GetShop(ctx context.Context, slug string) (*models.Shop, bool) {
	var s models.Shop
	if !c.getJSON(ctx, shopKey(slug), &s) {
		return nil, false
	}
	return &s, true
}

func (c *Cache) StoreShop(ctx context.Context, s *models.Shop) {
	c.setJSON(ctx, shopKey(s.Slug), s, shopCacheTTL)
}

func (c *Cache) DropShop(ctx context.Context, slug string) {
	c.drop(ctx, shopKey(slug))
}

func (c *Cache) GetCategories(ctx context.Context) ([]string, bool) {
	var cats []string
	if !c.getJSON(ctx, categoriesKey, &cats) {
		return nil, false
	}
	return cats, true
}

func (c *Cache) StoreCategories(ctx context.Context, cats []string) {
	c.setJSON(ctx, categoriesKey, cats, categoryCacheTTL)
}

func (c *Cache) DropCategories(ctx context.Context) {
	c.drop(ctx, categoriesKey)
}
