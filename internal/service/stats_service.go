package service

import (
	"context"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// StatsStore is the read side StatsService aggregates over
type StatsStore interface {
	CountOrders(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountVisitors(ctx context.Context) (int64, error)
	ListRevenueTotals(ctx context.Context) ([]models.OrderTotal, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

// StatsService computes the admin dashboard snapshot
type StatsService struct {
	store        StatsStore
	cache        StatsCache
	recentOrders int
	now          Clock
	logger       *zap.Logger
}

// NewStatsService creates a stats service. recentOrders <= 0 means 5.
func NewStatsService(store StatsStore, cache StatsCache, recentOrders int) *StatsService {
	if recentOrders <= 0 {
		recentOrders = 5
	}
	return &StatsService{
		store:        store,
		cache:        orDefaultCache(cache),
		recentOrders: recentOrders,
		now:          time.Now,
		logger:       util.GetLogger(),
	}
}

// WithClock replaces the time source used to pick the current year
func (s *StatsService) WithClock(now Clock) *StatsService {
	s.now = now
	return s
}

// ComputeStats returns the snapshot, from cache when one is present
func (s *StatsService) ComputeStats(ctx context.Context) (*models.AdminStats, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.ComputeStats")
	defer span.End()

	var cached models.AdminStats
	found, err := s.cache.Get(ctx, &cached)
	switch {
	case err != nil:
		util.StatsCacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Stats cache read failed", zap.Error(err))
	case found:
		util.StatsCacheRequestsTotal.WithLabelValues("hit").Inc()
		return &cached, nil
	default:
		util.StatsCacheRequestsTotal.WithLabelValues("miss").Inc()
	}

	generation, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("Stats cache generation read failed", zap.Error(genErr))
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		return stats, nil
	}
	stored, err := s.cache.SetIfGeneration(ctx, generation, stats)
	switch {
	case err != nil:
		s.logger.Warn("Stats cache write failed", zap.Error(err))
	case !stored:
		util.StatsCacheRequestsTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("Stats snapshot outdated by a concurrent write, not cached")
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*models.AdminStats, error) {
	start := time.Now()
	defer func() {
		util.StatsComputeLatency.Observe(time.Since(start).Seconds())
	}()

	totals, err := s.store.ListRevenueTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load order totals: %w", err)
	}

	stats := &models.AdminStats{}
	stats.Revenue, stats.SalesActivity = aggregateRevenue(totals, s.now().Year(), func(t models.OrderTotal, err error) {
		util.StatsSkippedOrdersTotal.Inc()
		s.logger.Warn("Skipping order with unparseable created_at",
			zap.String("created_at", t.CreatedAt),
			zap.Error(err))
	})

	if stats.OrdersCount, err = s.store.CountOrders(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if stats.ProductsCount, err = s.store.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if stats.VisitorsCount, err = s.store.CountVisitors(ctx); err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	recent, err := s.store.ListRecentOrders(ctx, s.recentOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	if recent == nil {
		recent = []models.Order{}
	}
	stats.RecentOrders = recent

	return stats, nil
}

// aggregateRevenue sums every total into revenue, and the totals created in
// year into their month bucket. Totals whose CreatedAt does not parse count
// towards revenue only and are reported to onSkip.
func aggregateRevenue(totals []models.OrderTotal, year int, onSkip func(models.OrderTotal, error)) (float64, [12]float64) {
	var revenue float64
	var activity [12]float64

	for _, t := range totals {
		revenue += t.TotalAmount

		created, err := time.Parse(models.CreatedAtLayout, t.CreatedAt)
		if err != nil {
			if onSkip != nil {
				onSkip(t, err)
			}
			continue
		}
		if created.Year() == year {
			activity[created.Month()-1] += t.TotalAmount
		}
	}

	return revenue, activity
}
