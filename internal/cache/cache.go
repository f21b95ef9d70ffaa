// Package cache memoizes simulation results by a hash of their inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/ats-simulator/internal/types"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "ats:sim:"

// Cache stores SimulationResults. Get reports a miss with (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*types.SimulationResult, error)
	Set(ctx context.Context, key string, result *types.SimulationResult) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client. A zero ttl stores entries without expiry.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*types.SimulationResult, error) {
	data, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}
	var result types.SimulationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache entry %s is corrupt: %w", key, err)
	}
	return &result, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, result *types.SimulationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := c.client.Set(ctx, KeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// keyMaterial is every request field that affects the result. Identifiers
// such as userId are excluded.
type keyMaterial struct {
	Version       string            `json:"v"`
	TargetRoleRaw string            `json:"targetRoleRaw"`
	SourceKind    types.SourceKind  `json:"sourceKind"`
	Source        string            `json:"source"`
	Prior         *string           `json:"prior"`
	TargetComp    *string           `json:"targetComp"`
	Salt          map[string]string `json:"salt,omitempty"`
}

// Key hashes the inputs of req. salt carries engine settings that change
// scoring, so a configuration change does not serve stale results.
func Key(req types.SimulationRequest, salt map[string]string) string {
	m := keyMaterial{
		Version:       "1",
		TargetRoleRaw: req.TargetRoleRaw,
		Prior:         req.PriorResumeText,
		TargetComp:    req.TargetComp,
		Salt:          salt,
	}
	switch src := req.Source().(type) {
	case types.TextSource:
		m.SourceKind, m.Source = src.Kind(), src.Text
	case types.URLSource:
		m.SourceKind, m.Source = src.Kind(), src.URL
	}
	data, _ := json.Marshal(m)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
