package service

import (
	"context"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// VisitStore persists visit-days
type VisitStore interface {
	InsertVisit(ctx context.Context, ipAddress, visitDate string) (bool, error)
}

// VisitGuard is a fast check in front of the visitors table
type VisitGuard interface {
	MarkVisit(ctx context.Context, ipAddress, visitDate string) (bool, error)
	UnmarkVisit(ctx context.Context, ipAddress, visitDate string) error
}

// VisitorService records at most one visit per address and day
type VisitorService struct {
	store  VisitStore
	guard  VisitGuard
	cache  StatsCache
	now    Clock
	logger *zap.Logger
}

// NewVisitorService creates a visitor service, guard may be nil
func NewVisitorService(store VisitStore, guard VisitGuard, cache StatsCache) *VisitorService {
	return &VisitorService{
		store:  store,
		guard:  guard,
		cache:  orDefaultCache(cache),
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// WithClock replaces the time source used to pick the visit day
func (s *VisitorService) WithClock(now Clock) *VisitorService {
	s.now = now
	return s
}

// RecordVisit stores a visit for ipAddress today. Returns false when the
// address was already recorded for the day.
func (s *VisitorService) RecordVisit(ctx context.Context, ipAddress string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "VisitorService.RecordVisit")
	defer span.End()

	visitDate := s.now().Format(models.VisitDateLayout)

	marked := false
	if s.guard != nil {
		fresh, err := s.guard.MarkVisit(ctx, ipAddress, visitDate)
		switch {
		case err != nil:
			s.logger.Warn("Visit guard unavailable, falling back to DB", zap.Error(err))
		case !fresh:
			util.VisitsRecordedTotal.WithLabelValues("duplicate").Inc()
			return false, nil
		default:
			marked = true
		}
	}

	inserted, err := s.store.InsertVisit(ctx, ipAddress, visitDate)
	if err != nil {
		if marked {
			if uerr := s.guard.UnmarkVisit(ctx, ipAddress, visitDate); uerr != nil {
				s.logger.Warn("Failed to clear visit guard", zap.Error(uerr))
			}
		}
		return false, fmt.Errorf("failed to record visit: %w", err)
	}

	if !inserted {
		util.VisitsRecordedTotal.WithLabelValues("duplicate").Inc()
		return false, nil
	}

	util.VisitsRecordedTotal.WithLabelValues("recorded").Inc()
	invalidateStats(ctx, s.cache, s.logger)
	s.logger.Debug("Visit recorded",
		zap.String("ip_address", ipAddress),
		zap.String("visit_date", visitDate))
	return true, nil
}
