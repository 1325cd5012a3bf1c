package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/storefront/internal/domain"
)

// RedisCache implements read caching for catalog products and review lists
type RedisCache struct {
	client         *redis.Client
	productTTL     time.Duration
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productTTL, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		productTTL:     productTTL,
		reviewsListTTL: reviewsListTTL,
	}
}

// Product cache keys and methods

func (c *RedisCache) productKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID.String())
}

// GetProduct retrieves a cached product with its variants
func (c *RedisCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	val, err := c.client.Get(ctx, c.productKey(productID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// SetProduct stores a product in cache
func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.productKey(product.ID), data, c.productTTL).Err()
}

// InvalidateProduct removes a product from cache
func (c *RedisCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, c.productKey(productID)).Err()
}

// Reviews list cache keys and methods

func (c *RedisCache) reviewsListKey(productID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("product:%s:reviews:limit:%d:offset:%d", productID.String(), limit, offset)
}

func (c *RedisCache) productCacheKeysSet(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:cache_keys", productID.String())
}

// GetReviewsList retrieves a cached reviews page for a product
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	key := c.reviewsListKey(productID, limit, offset)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.Review
	if err := json.Unmarshal([]byte(val), &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetReviewsList stores a reviews page in cache and tracks the key in a SET
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	key := c.reviewsListKey(productID, limit, offset)
	trackingKey := c.productCacheKeysSet(productID)

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateReviewsList removes all cached review pages for a product using SET-based tracking
func (c *RedisCache) InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error {
	trackingKey := c.productCacheKeysSet(productID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}

// InvalidateAllProductCache invalidates all cache entries for a product
func (c *RedisCache) InvalidateAllProductCache(ctx context.Context, productID uuid.UUID) error {
	if err := c.InvalidateProduct(ctx, productID); err != nil && err != redis.Nil {
		return err
	}

	if err := c.InvalidateReviewsList(ctx, productID); err != nil && err != redis.Nil {
		return err
	}

	return nil
}
