package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-desk/request-service/internal/repository"
	apperrors "github.com/campus-desk/request-service/pkg/util/errorutil"
)

// DashboardService serves aggregate counters, caching each result in
// Redis for a short TTL. A cache miss or a cache error falls through to
// the SQL aggregates; the cache is never authoritative.
type DashboardService struct {
	stats  repository.DashboardRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService constructs the service. The cache client may be
// nil, in which case every call hits the database.
func NewDashboardService(stats repository.DashboardRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{stats: stats, cache: cache, ttl: ttl, logger: logger}
}

// StudentStats returns the requester's dashboard counters.
func (s *DashboardService) StudentStats(ctx context.Context, requesterID string) (*repository.StudentStats, error) {
	key := "dashboard:student:" + requesterID
	var stats repository.StudentStats
	if s.cacheGet(ctx, key, &stats) {
		return &stats, nil
	}
	fresh, err := s.stats.StudentStats(ctx, requesterID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

// OfficerStats returns the officer's workload counters.
func (s *DashboardService) OfficerStats(ctx context.Context, officerID string) (*repository.OfficerStats, error) {
	key := "dashboard:officer:" + officerID
	var stats repository.OfficerStats
	if s.cacheGet(ctx, key, &stats) {
		return &stats, nil
	}
	fresh, err := s.stats.OfficerStats(ctx, officerID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

// AdminStats returns the system-wide counters.
func (s *DashboardService) AdminStats(ctx context.Context) (*repository.AdminStats, error) {
	const key = "dashboard:admin"
	var stats repository.AdminStats
	if s.cacheGet(ctx, key, &stats) {
		return &stats, nil
	}
	fresh, err := s.stats.AdminStats(ctx)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	s.cacheSet(ctx, key, fresh)
	return fresh, nil
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("dashboard cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
