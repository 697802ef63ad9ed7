package datasource

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/arena-bets/internal/logger"
	"github.com/yourusername/arena-bets/internal/metrics"
	"github.com/yourusername/arena-bets/internal/models"
)

// CachedPredictionSource memoizes predictions per round in front of another source.
// Errors are never cached.
type CachedPredictionSource struct {
	source    PredictionSource
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Int64
	missCount atomic.Int64
	logger    *logger.DataSourceLogger
}

// NewCachedPredictionSource wraps source with a TTL cache
func NewCachedPredictionSource(source PredictionSource, ttl time.Duration, log *logger.DataSourceLogger) *CachedPredictionSource {
	return &CachedPredictionSource{
		source: source,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
		logger: log,
	}
}

// FetchPredictions returns a cached copy when present, otherwise delegates
func (c *CachedPredictionSource) FetchPredictions(ctx context.Context, roundID int) ([]models.Prediction, error) {
	key := strconv.Itoa(roundID)
	if cached, found := c.cache.Get(key); found {
		if preds, ok := cached.([]models.Prediction); ok {
			c.hitCount.Add(1)
			c.updateMetrics()
			return clonePredictions(preds), nil
		}
	}

	c.missCount.Add(1)
	c.updateMetrics()
	preds, err := c.source.FetchPredictions(ctx, roundID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, clonePredictions(preds), c.ttl)
	return preds, nil
}

// Invalidate drops the cached predictions for a round
func (c *CachedPredictionSource) Invalidate(roundID int) {
	c.cache.Delete(strconv.Itoa(roundID))
}

// Stats returns hit and miss counts
func (c *CachedPredictionSource) Stats() (hits, misses int64) {
	return c.hitCount.Load(), c.missCount.Load()
}

// HitRatio returns hits over lookups, 0 before the first lookup
func (c *CachedPredictionSource) HitRatio() float64 {
	hits, misses := c.Stats()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// LogStats writes the current counters to the data source log
func (c *CachedPredictionSource) LogStats() {
	if c.logger == nil {
		return
	}
	hits, misses := c.Stats()
	c.logger.LogCacheStats(hits, misses, c.cache.ItemCount())
}

func (c *CachedPredictionSource) updateMetrics() {
	metrics.UpdateCacheHitRatio(c.HitRatio())
}

func clonePredictions(preds []models.Prediction) []models.Prediction {
	out := make([]models.Prediction, len(preds))
	copy(out, preds)
	return out
}
