package job

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// Engagement counts reactions on the source post
type Engagement struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
}

// Job is a scraped job posting
type Job struct {
	ID         int64      `json:"id"`
	TweetID    string     `json:"tweet_id"`
	TweetURL   string     `json:"tweet_url"`
	Author     string     `json:"author"`
	Username   string     `json:"username"`
	Text       string     `json:"text"`
	Category   string     `json:"category"`
	PostedAt   time.Time  `json:"posted_at"`
	Engagement Engagement `json:"engagement"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListParams filters the job feed
type ListParams struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty" validate:"gte=0,lte=500"`
}

// Repository is the backend job feed
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Job, error)
	Stats(ctx context.Context) (map[string]any, error)
	UserDashboard(ctx context.Context, timeRange string) (map[string]any, error)
}

// Service serves the dashboard
type Service interface {
	List(ctx context.Context, params ListParams) ([]Job, error)
	Stats(ctx context.Context) (map[string]any, error)
	UserDashboard(ctx context.Context, timeRange string) (map[string]any, error)
	Invalidate()
}
