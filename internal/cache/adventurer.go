// Package cache provides a Redis read-through cache for authoritative adventurer reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

const adventurerKeyPrefix = "adventurer:"

// NewRedisClient connects to the Redis server described by cfg.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a client that answered PING, or a non-nil error.
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// AdventurerCache wraps an AdventurerFetcher with a TTL-bounded Redis cache.
// Redis failures degrade to direct fetches.
type AdventurerCache struct {
	client redis.UniversalClient
	inner  ledger.AdventurerFetcher
	ttl    time.Duration
	logger *zap.Logger
}

// NewAdventurerCache creates an AdventurerCache.
//
// Precondition: client, inner and logger must be non-nil; ttl must be positive.
func NewAdventurerCache(client redis.UniversalClient, inner ledger.AdventurerFetcher, ttl time.Duration, logger *zap.Logger) *AdventurerCache {
	return &AdventurerCache{client: client, inner: inner, ttl: ttl, logger: logger}
}

func adventurerKey(gameID uint64) string {
	return adventurerKeyPrefix + strconv.FormatUint(gameID, 10)
}

// FetchAdventurer returns the cached adventurer for gameID, fetching and
// caching it on a miss. ErrNotFound results are never cached.
func (c *AdventurerCache) FetchAdventurer(ctx context.Context, gameID uint64) (*adventurer.Adventurer, error) {
	key := adventurerKey(gameID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var adv adventurer.Adventurer
		if jsonErr := json.Unmarshal(data, &adv); jsonErr == nil {
			return &adv, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("adventurer cache read failed", zap.String("key", key), zap.Error(err))
	}

	adv, err := c.inner.FetchAdventurer(ctx, gameID)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(adv)
	if err != nil {
		return nil, fmt.Errorf("encoding adventurer for cache: %w", err)
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warn("adventurer cache write failed", zap.String("key", key), zap.Error(err))
	}
	return adv, nil
}

// Invalidate drops the cached adventurer for gameID.
func (c *AdventurerCache) Invalidate(ctx context.Context, gameID uint64) error {
	if err := c.client.Del(ctx, adventurerKey(gameID)).Err(); err != nil {
		return fmt.Errorf("invalidating adventurer %d: %w", gameID, err)
	}
	return nil
}
