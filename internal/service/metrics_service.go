package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

const metricsCacheKeyPrefix = "sla:metrics:"

// MetricsService consolidates SLA snapshots over a trailing window. Fresh
// snapshots are cached in Redis so dashboards polling the endpoint do not
// re-scan the ticket table on every request; cache trouble degrades to a
// recompute, never to an error.
type MetricsService struct {
	db        repository.Querier
	tickets   repository.TicketRepository
	slaConfig *configstore.Store
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewMetricsService creates the service. cache may be nil; caching is then
// skipped entirely.
func NewMetricsService(db repository.Querier, tickets repository.TicketRepository, slaConfig *configstore.Store, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *MetricsService {
	return &MetricsService{
		db:        db,
		tickets:   tickets,
		slaConfig: slaConfig,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Consolidate returns the SLA snapshot for tickets opened in the trailing
// windowDays days.
func (s *MetricsService) Consolidate(ctx context.Context, windowDays int) (*sla.Snapshot, error) {
	if windowDays <= 0 {
		return nil, apperrors.NewValidationError("window must be positive", map[string]any{"window_days": windowDays})
	}

	key := fmt.Sprintf("%s%d", metricsCacheKeyPrefix, windowDays)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -windowDays)
	tickets, err := s.tickets.ListWithFilter(ctx, s.db, repository.TicketFilter{OpenedFrom: &cutoff})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	cfg := s.slaConfig.Snapshot(ctx)
	snapshot := sla.Consolidate(tickets, cfg.Policy, cfg.Calendar, windowDays, now)
	s.toCache(ctx, key, &snapshot)
	return &snapshot, nil
}

// InvalidateCache drops cached snapshots so the next read recomputes.
func (s *MetricsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, metricsCacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("metrics cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("metrics cache scan failed", zap.Error(err))
	}
}

func (s *MetricsService) fromCache(ctx context.Context, key string) *sla.Snapshot {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("metrics cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var snapshot sla.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.logger.Warn("metrics cache payload corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &snapshot
}

func (s *MetricsService) toCache(ctx context.Context, key string, snapshot *sla.Snapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("metrics snapshot marshal failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("metrics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
