package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ddi-checker/internal/domain"
)

// CacheClient wraps a Redis client caching drug-name suggestions
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// CachedSuggestions represents cached suggestions with metadata
type CachedSuggestions struct {
	Query     string    `json:"query"`
	Names     []string  `json:"names"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewCacheClient creates a new cache client and checks the connection
func NewCacheClient(ctx context.Context, config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.RedisTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

// GetSuggestions retrieves cached suggestions for a normalized query
func (c *CacheClient) GetSuggestions(ctx context.Context, query string) ([]string, bool, error) {
	key := suggestionKey(query)

	val, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get suggestion cache: %w", err)
	}

	var cached CachedSuggestions
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) || cached.Query != query {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Names, true, nil
}

// SetSuggestions caches suggestions for a normalized query
func (c *CacheClient) SetSuggestions(ctx context.Context, query string, names []string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	cached := CachedSuggestions{
		Query:     query,
		Names:     names,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestion cache data: %w", err)
	}

	return c.redis.Set(ctx, suggestionKey(query), data, ttl).Err()
}

// InvalidateSuggestions removes every cached suggestion list
func (c *CacheClient) InvalidateSuggestions(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, "suggest:*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan suggestion keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete suggestion keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks if Redis connection is alive
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

// suggestionKey hashes the query so arbitrary user input makes a safe key.
func suggestionKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("suggest:%x", hash[:8])
}
