package main

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var errCacheMiss = errors.New("cache miss")

type cacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
}

func newRedisStore(ctx context.Context, redisURL string) (*redisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	return val, err
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// infoCache keeps successful lookups for a short while and collapses concurrent lookups
// of the same URL into one backend call. Store failures only cost a cache miss.
//
// The shared lookup is detached from any single caller and bounded by fetchTimeout, so one
// caller going away never fails the others waiting on it.
type infoCache struct {
	next         VideoInfoSource
	store        cacheStore
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	log          *zap.SugaredLogger
}

func newInfoCache(next VideoInfoSource, store cacheStore, ttl, fetchTimeout time.Duration, log *zap.SugaredLogger) *infoCache {
	return &infoCache{next: next, store: store, ttl: ttl, fetchTimeout: fetchTimeout, log: log}
}

func (c *infoCache) Name() string {
	return c.next.Name()
}

func cacheKey(source, canonicalURL string) string {
	hash := sha256.Sum256([]byte(source + "|" + canonicalURL))
	return fmt.Sprintf("ytinfo:%x", hash[:12])
}

func (c *infoCache) FetchVideoInfo(ctx context.Context, canonicalURL string) (*VideoInfo, error) {
	key := cacheKey(c.next.Name(), canonicalURL)
	if data, err := c.store.Get(ctx, key); err == nil {
		var info VideoInfo
		if err := json.Unmarshal(data, &info); err == nil {
			c.log.Debugw("cache hit", "url", canonicalURL)
			return &info, nil
		}
		c.log.Warnw("discarding corrupt cache entry", "key", key)
	} else if !errors.Is(err, errCacheMiss) {
		c.log.Warnw("cache read failed", "error", err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		info, err := c.next.FetchVideoInfo(fetchCtx, canonicalURL)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(info); err == nil {
			if err := c.store.Set(fetchCtx, key, data, c.ttl); err != nil {
				c.log.Warnw("cache write failed", "error", err)
			}
		}
		return info, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, &RetrievalError{Source: c.next.Name(), Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	// Callers sharing a flight must not alias each other's format slice.
	shared := res.Val.(*VideoInfo)
	info := *shared
	info.Formats = append([]FormatVariant(nil), shared.Formats...)
	return &info, nil
}
