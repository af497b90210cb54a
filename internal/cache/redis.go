package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/mappool-community/internal/config"
)

// tallyTTL bounds staleness of cached vote counts; the DB stays the source
// of truth and repopulates expired keys on read.
const tallyTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForTally generates the Redis key for a beatmap's vote tally.
// voteType is "upvote" or "downvote".
func (c *RedisCache) KeyForTally(beatmapID uint64, voteType string) string {
	return fmt.Sprintf("votes:%s:%d", voteType, beatmapID)
}

// GetTally returns the cached count for one tally key. A cache miss is
// reported via ok=false, not an error.
func (c *RedisCache) GetTally(ctx context.Context, beatmapID uint64, voteType string) (int64, bool, error) {
	key := c.KeyForTally(beatmapID, voteType)
	val, err := c.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, tallyTTL).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// SetTally stores a freshly computed count with TTL.
func (c *RedisCache) SetTally(ctx context.Context, beatmapID uint64, voteType string, count int64) error {
	return c.Client.Set(ctx, c.KeyForTally(beatmapID, voteType), count, tallyTTL).Err()
}

// BumpTally adjusts a cached count after a vote transition (+1 / -1).
// Only applied when the key already exists so an absent tally is not
// initialized to a wrong value; TTL is refreshed on every bump.
func (c *RedisCache) BumpTally(ctx context.Context, beatmapID uint64, voteType string, delta int64) error {
	key := c.KeyForTally(beatmapID, voteType)
	exists, err := c.Client.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return err
	}
	if err := c.Client.IncrBy(ctx, key, delta).Err(); err != nil {
		return err
	}
	return c.Client.Expire(ctx, key, tallyTTL).Err()
}

// InvalidateTallies drops both cached counts for a beatmap, e.g. after the
// map itself is deleted.
func (c *RedisCache) InvalidateTallies(ctx context.Context, beatmapID uint64) error {
	return c.Del(ctx,
		c.KeyForTally(beatmapID, "upvote"),
		c.KeyForTally(beatmapID, "downvote"),
	)
}
