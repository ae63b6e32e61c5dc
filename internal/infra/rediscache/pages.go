// Package rediscache adds an optional Redis cache in front of the verse
// source, so repeated quizzes on the same page do not hit the external API.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
)

// PageLoader fetches page verses from the backing source on a cache miss.
type PageLoader interface {
	FetchPage(ctx context.Context, page int) ([]entities.Verse, error)
}

// PageCache caches whole pages as JSON values with a jittered TTL. Concurrent
// misses for the same page are collapsed into one upstream fetch.
type PageCache struct {
	client *redis.Client
	loader PageLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPageCache(client *redis.Client, loader PageLoader, ttl time.Duration) *PageCache {
	return &PageCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchPage returns the cached page or loads and caches it. Cache failures
// are not fatal; the loader result is always authoritative.
func (c *PageCache) FetchPage(ctx context.Context, page int) ([]entities.Verse, error) {
	key := c.key(page)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var verses []entities.Verse
		if err := json.Unmarshal([]byte(raw), &verses); err == nil {
			return verses, nil
		}
		// Corrupt entry: drop it and fall through to the loader.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("page cache get: %w", err)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := c.client.Get(ctx, key).Result()
		if err == nil {
			var verses []entities.Verse
			if err := json.Unmarshal([]byte(raw), &verses); err == nil {
				return verses, nil
			}
		}

		verses, err := c.loader.FetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(verses); err == nil {
			_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		}

		return verses, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]entities.Verse), nil
}

func (c *PageCache) key(page int) string {
	return fmt.Sprintf("quran:page:%d", page)
}

// ttlWithJitter spreads expirations so all cached pages do not fall out of
// the cache at once. Up to 10% is added; a ttl too small to jitter is
// returned as is.
func (c *PageCache) ttlWithJitter() time.Duration {
	jitterSpan := c.ttl / 10
	if jitterSpan <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(c.rnd.Int63n(int64(jitterSpan)))
}
