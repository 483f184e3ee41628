package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cargo-tracker/internal/core/cache"
	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/features/carriers/domain"
	"cargo-tracker/internal/features/carriers/ports"

	"go.uber.org/zap"
)

const milestoneKeyPrefix = "carrier:milestones:"

// CachedMilestoneFeed serves recent feed results from the cache and falls through to the
// wrapped feed on a miss. Cache failures never fail a fetch.
type CachedMilestoneFeed struct {
	next   ports.MilestoneFeed
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedMilestoneFeed wraps next with a cache holding results for ttl.
func NewCachedMilestoneFeed(next ports.MilestoneFeed, c cache.Cache, ttl time.Duration) *CachedMilestoneFeed {
	return &CachedMilestoneFeed{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.Named("carrier-feed"),
	}
}

// FetchMilestones implements ports.MilestoneFeed.
func (f *CachedMilestoneFeed) FetchMilestones(ctx context.Context, containerNumber string) (*domain.MilestoneFeed, error) {
	key := milestoneKeyPrefix + containerNumber

	raw, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		var feed domain.MilestoneFeed
		jsonErr := json.Unmarshal(raw, &feed)
		if jsonErr == nil {
			f.logger.Debug("Carrier feed cache hit", zap.String("container_number", containerNumber))
			return &feed, nil
		}
		f.logger.Warn("Discarding unreadable cached carrier feed", zap.String("key", key), zap.Error(jsonErr))
	case !errors.Is(err, cache.ErrCacheMiss):
		f.logger.Warn("Carrier feed cache unavailable", zap.String("key", key), zap.Error(err))
	}

	feed, err := f.next.FetchMilestones(ctx, containerNumber)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(feed)
	if err != nil {
		return feed, nil
	}
	if err := f.cache.Set(ctx, key, encoded, f.ttl); err != nil {
		f.logger.Warn("Failed to cache carrier feed", zap.String("key", key), zap.Error(err))
	}
	return feed, nil
}
