package service

import (
	"context"
	"time"

	"shop-service/internal/models"

	"go.uber.org/zap"
)

// EventPublisher publishes domain events, failures are logged by callers
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event *models.ProductEvent) error
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// StatsCache holds the admin stats snapshot. Invalidate bumps a generation
// counter; SetIfGeneration stores only while that counter is unchanged.
type StatsCache interface {
	Get(ctx context.Context, dst interface{}) (bool, error)
	Generation(ctx context.Context) (int64, error)
	SetIfGeneration(ctx context.Context, generation int64, value interface{}) (bool, error)
	Invalidate(ctx context.Context) error
}

// Clock returns the current time
type Clock func() time.Time

type noStatsCache struct{}

func (noStatsCache) Get(context.Context, interface{}) (bool, error) { return false, nil }
func (noStatsCache) Generation(context.Context) (int64, error)     { return 0, nil }
func (noStatsCache) Invalidate(context.Context) error              { return nil }

func (noStatsCache) SetIfGeneration(context.Context, int64, interface{}) (bool, error) {
	return true, nil
}

// invalidateStats drops the cached snapshot after a write
func invalidateStats(ctx context.Context, cache StatsCache, logger *zap.Logger) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}

func orDefaultCache(cache StatsCache) StatsCache {
	if cache == nil {
		return noStatsCache{}
	}
	return cache
}

// pageBounds clamps listing parameters to sane values
func pageBounds(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return skip, limit
}
