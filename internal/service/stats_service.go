package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
	"agsavn-data/internal/metrics"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/store"
)

const (
	DefaultStatsDays = 30
	MaxStatsDays     = 365

	statsKeyPrefix = "agsavn:stats:alerts:"
)

// StatsService alert aggregates over a trailing window, cached in Redis.
type StatsService interface {
	GetAlertStats(ctx context.Context, req AlertStatsRequest) (*AlertStats, error)
	// InvalidateAlertStats drops every cached aggregate. Errors are logged only.
	InvalidateAlertStats(ctx context.Context)
}

type AlertStatsRequest struct {
	Days       int
	RegionID   string
	CategoryID string
}

type AlertStats struct {
	Days        int            `json:"days"`
	Since       time.Time      `json:"since"`
	TotalAlerts int            `json:"total_alerts"`
	ByStatus    map[string]int `json:"by_status"`
	BySeverity  map[string]int `json:"by_severity"`
	ByCategory  map[string]int `json:"by_category"`
	ByRegion    map[string]int `json:"by_region"`
}

type statsService struct {
	alerts repository.AlertsRepository
	kv     store.KV // nil disables caching
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewStatsService(alerts repository.AlertsRepository, kv store.KV, ttl time.Duration, logger *zap.Logger) StatsService {
	return &statsService{alerts: alerts, kv: kv, ttl: ttl, now: time.Now, logger: logger}
}

func statsCacheKey(req AlertStatsRequest) string {
	return fmt.Sprintf("%s%d:%s:%s", statsKeyPrefix, req.Days, req.RegionID, req.CategoryID)
}

func (s *statsService) GetAlertStats(ctx context.Context, req AlertStatsRequest) (*AlertStats, error) {
	if req.Days == 0 {
		req.Days = DefaultStatsDays
	}
	if req.Days < 0 || req.Days > MaxStatsDays {
		return nil, domain.Validationf("days must be between 1 and %d", MaxStatsDays)
	}

	key := statsCacheKey(req)
	if s.kv != nil {
		var cached AlertStats
		err := store.GetJSON(ctx, s.kv, key, &cached)
		switch {
		case err == nil:
			metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		case errors.Is(err, store.ErrMiss):
			metrics.StatsCacheTotal.WithLabelValues("miss").Inc()
		default:
			s.logger.Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	since := s.now().UTC().AddDate(0, 0, -req.Days)
	f := repository.StatsFilters{Since: since, RegionID: req.RegionID, CategoryID: req.CategoryID}

	total, err := s.alerts.CountAlerts(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &AlertStats{Days: req.Days, Since: since, TotalAlerts: total}
	for _, d := range []struct {
		dim repository.StatsDimension
		dst *map[string]int
	}{
		{repository.DimStatus, &out.ByStatus},
		{repository.DimSeverity, &out.BySeverity},
		{repository.DimCategory, &out.ByCategory},
		{repository.DimRegion, &out.ByRegion},
	} {
		m, err := s.alerts.CountAlertsBy(ctx, d.dim, f)
		if err != nil {
			return nil, err
		}
		*d.dst = m
	}

	if s.kv != nil && s.ttl > 0 {
		if err := store.SetJSON(ctx, s.kv, key, out, s.ttl); err != nil {
			s.logger.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (s *statsService) InvalidateAlertStats(ctx context.Context) {
	if s.kv == nil {
		return
	}
	n, err := store.DeletePattern(ctx, s.kv, statsKeyPrefix+"*")
	if err != nil {
		s.logger.Warn("Stats cache invalidation failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("Stats cache invalidated", zap.Int("keys", n))
	}
}
