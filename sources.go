package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// VideoInfoSource fetches metadata and format variants for a canonical watch URL.
// Implementations return *RetrievalError on failure.
type VideoInfoSource interface {
	FetchVideoInfo(ctx context.Context, canonicalURL string) (*VideoInfo, error)
	Name() string
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}

// newVideoInfoSource builds the configured backend, wrapped in the Redis cache when one
// is configured and reachable.
func newVideoInfoSource(ctx context.Context, cfg Config, log *zap.SugaredLogger) (VideoInfoSource, error) {
	var src VideoInfoSource
	switch cfg.Source {
	case SourceYTDLP:
		src = newYTDLPSource(cfg.YTDLPPath, cfg.YTDLPCookies, log.Named("ytdlp"))
	case SourceLibrary:
		src = newLibrarySource(newHTTPClient())
	case SourceRemote:
		src = newRemoteSource(cfg.APIURL, newHTTPClient())
	default:
		return nil, fmt.Errorf("unknown info source %q", cfg.Source)
	}
	if cfg.RedisURL == "" {
		return src, nil
	}
	store, err := newRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Warnw("video info cache disabled", "error", err)
		return src, nil
	}
	log.Infow("video info cache enabled", "ttl", cfg.CacheTTL)
	return newInfoCache(src, store, cfg.CacheTTL, cfg.FetchTimeout, log.Named("cache")), nil
}
