package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/job"
)

// JobRepository implements job.Repository over the backend
type JobRepository struct {
	c *Client
}

var _ job.Repository = (*JobRepository)(nil)

func NewJobRepository(c *Client) *JobRepository {
	return &JobRepository{c: c}
}

func (r *JobRepository) List(ctx context.Context, params job.ListParams) ([]job.Job, error) {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	var jobs []job.Job
	err := r.c.do(ctx, request{
		name:   "jobs.list",
		method: http.MethodGet,
		path:   "/api/jobs",
		query:  q,
		auth:   true,
	}, &jobs)
	return jobs, err
}

func (r *JobRepository) Stats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	err := r.c.do(ctx, request{
		name:   "jobs.stats",
		method: http.MethodGet,
		path:   "/api/stats",
		auth:   true,
	}, &stats)
	return stats, err
}

func (r *JobRepository) UserDashboard(ctx context.Context, timeRange string) (map[string]any, error) {
	var dashboard map[string]any
	err := r.c.do(ctx, request{
		name:   "analytics.user_dashboard",
		method: http.MethodGet,
		path:   "/api/analytics/user/dashboard",
		query:  url.Values{"time_range": {timeRange}},
		auth:   true,
	}, &dashboard)
	return dashboard, err
}
