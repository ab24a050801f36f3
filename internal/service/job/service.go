package job

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/job"
	"github.com/patrickmn/go-cache"
)

var validTimeRanges = map[string]bool{
	"today": true,
	"week":  true,
	"month": true,
	"year":  true,
	"all":   true,
}

// Config holds job service configuration
type Config struct {
	CacheTTL        time.Duration // default: 30 seconds
	CleanupInterval time.Duration // default: 2 x CacheTTL
}

type service struct {
	repo  job.Repository
	cache *cache.Cache
}

// NewJobService creates a job service with a short-lived read cache
func NewJobService(repo job.Repository, cfg Config) job.Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 2 * cfg.CacheTTL
	}
	return &service{
		repo:  repo,
		cache: cache.New(cfg.CacheTTL, cfg.CleanupInterval),
	}
}

// List returns the job feed, cached per category and limit
func (s *service) List(ctx context.Context, params job.ListParams) ([]job.Job, error) {
	key := fmt.Sprintf("jobs:%s:%d", params.Category, params.Limit)
	if cached, found := s.cache.Get(key); found {
		return cached.([]job.Job), nil
	}

	jobs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []job.Job{}
	}
	s.cache.Set(key, jobs, cache.DefaultExpiration)
	return jobs, nil
}

func (s *service) Stats(ctx context.Context) (map[string]any, error) {
	if cached, found := s.cache.Get("stats"); found {
		return cached.(map[string]any), nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set("stats", stats, cache.DefaultExpiration)
	return stats, nil
}

// UserDashboard is never cached; it reflects the signed-in user's activity
func (s *service) UserDashboard(ctx context.Context, timeRange string) (map[string]any, error) {
	if timeRange == "" {
		timeRange = "week"
	}
	if !validTimeRanges[timeRange] {
		return nil, job.ErrInvalidTimeRange
	}
	return s.repo.UserDashboard(ctx, timeRange)
}

// Invalidate drops every cached read
func (s *service) Invalidate() {
	s.cache.Flush()
}
