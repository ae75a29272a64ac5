package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedGeocoder is a read-through cache in front of the provider client.
// Identical addresses resolve once per TTL; cache failures degrade to direct
// lookups, never to request failures. No-match results are not cached so a
// newly valid address resolves immediately.
type CachedGeocoder struct {
	next    Geocoder
	redis   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

func NewCachedGeocoder(next Geocoder, rdb *redis.Client, ttl time.Duration, logger *slog.Logger, metrics *Metrics) *CachedGeocoder {
	return &CachedGeocoder{next: next, redis: rdb, ttl: ttl, logger: logger, metrics: metrics}
}

func (c *CachedGeocoder) Forward(ctx context.Context, query string) (Point, error) {
	key := "geocode:" + query

	raw, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var point Point
		if jsonErr := json.Unmarshal([]byte(raw), &point); jsonErr == nil {
			if c.metrics != nil {
				c.metrics.CacheHits.Inc()
			}
			return point, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "geocode cache read failed", "error", err)
	}

	point, err := c.next.Forward(ctx, query)
	if err != nil {
		return Point{}, err
	}

	if data, jsonErr := json.Marshal(point); jsonErr == nil {
		if setErr := c.redis.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "geocode cache write failed", "error", setErr)
		}
	}
	return point, nil
}
