package marketdata

import (
	"context"
	"time"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/pkg/logger"
	"github.com/wonny/chooser/pkg/redis"
)

// CachedLoader is a read-through Redis cache in front of a HistoryLoader.
// Cache failures fall back to the inner loader.
type CachedLoader struct {
	inner HistoryLoader
	cache *redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedLoader wraps inner with cache
func NewCachedLoader(inner HistoryLoader, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedLoader {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedLoader{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// LoadHistory serves from cache when possible and fills it on a miss
func (c *CachedLoader) LoadHistory(ctx context.Context, code string, from, to time.Time) (*contracts.Market, error) {
	key := redis.MarketHistoryKey(code, from, to)

	var cached contracts.Market
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Market cache read failed")
	}
	if hit {
		return &cached, nil
	}

	m, err := c.inner.LoadHistory(ctx, code, from, to)
	if err != nil {
		return nil, err
	}

	if len(m.Bars) > 0 {
		if err := c.cache.Set(ctx, key, m, c.ttl); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("Market cache write failed")
		}
	}

	return m, nil
}
