// Package cache holds the Redis-backed follow list index.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/clipshare/pkg/logger"
)

// Loader returns the full ordered ID list from the primary store.
type Loader func(ctx context.Context) ([]uint64, error)

// FollowCache caches follower/followee ID lists as Redis lists and serves
// pages with LRANGE. User rows are always read fresh so counters stay current.
// A nil *FollowCache is valid and always calls the loader.
type FollowCache struct {
	rdb *redis.Client
	ttl time.Duration

	indexLoads atomic.Int64
}

func NewFollowCache(rdb *redis.Client, ttl time.Duration) *FollowCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowCache{rdb: rdb, ttl: ttl}
}

func followersKey(userID uint64) string  { return fmt.Sprintf("followers:index:%d", userID) }
func followingsKey(userID uint64) string { return fmt.Sprintf("followings:index:%d", userID) }

func (c *FollowCache) FollowerPage(ctx context.Context, userID uint64, page, size int, load Loader) ([]uint64, error) {
	return c.page(ctx, followersKey(userID), page, size, load)
}

func (c *FollowCache) FollowingPage(ctx context.Context, userID uint64, page, size int, load Loader) ([]uint64, error) {
	return c.page(ctx, followingsKey(userID), page, size, load)
}

func (c *FollowCache) page(ctx context.Context, key string, page, size int, load Loader) ([]uint64, error) {
	start := (page - 1) * size
	if c == nil {
		all, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return slicePage(all, start, size), nil
	}

	exists, err := c.rdb.Exists(ctx, key).Result()
	if err == nil && exists > 0 {
		vals, err := c.rdb.LRange(ctx, key, int64(start), int64(start+size-1)).Result()
		if err == nil {
			return parseIDs(vals), nil
		}
	}
	if err != nil {
		logger.Warn("follow cache read failed", zap.String("key", key), zap.Error(err))
	}

	all, err := c.loadAndCache(ctx, key, load)
	if err != nil {
		return nil, err
	}
	return slicePage(all, start, size), nil
}

func (c *FollowCache) loadAndCache(ctx context.Context, key string, load Loader) ([]uint64, error) {
	c.indexLoads.Add(1)
	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		pipe := c.rdb.TxPipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("follow cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return ids, nil
}

// Invalidate drops both sides of a changed edge.
func (c *FollowCache) Invalidate(ctx context.Context, followerID, followeeID uint64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, followersKey(followeeID), followingsKey(followerID)).Err(); err != nil {
		logger.Warn("follow cache invalidate failed",
			zap.Uint64("follower", followerID), zap.Uint64("followee", followeeID), zap.Error(err))
	}
}

// InvalidateUser drops both lists owned by userID.
func (c *FollowCache) InvalidateUser(ctx context.Context, userID uint64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, followersKey(userID), followingsKey(userID)).Err(); err != nil {
		logger.Warn("follow cache invalidate failed", zap.Uint64("user", userID), zap.Error(err))
	}
}

// IndexLoads reports how many times the loader was hit.
func (c *FollowCache) IndexLoads() int64 { return c.indexLoads.Load() }

func slicePage(all []uint64, start, size int) []uint64 {
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return []uint64{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func parseIDs(vals []string) []uint64 {
	out := make([]uint64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func interfaceSlice(ids []uint64) []interface{} {
	result := make([]interface{}, len(ids))
	for i, id := range ids {
		result[i] = id
	}
	return result
}
