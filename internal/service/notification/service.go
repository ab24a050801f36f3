package notification

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
)

// Config holds notification history configuration
type Config struct {
	PageSize int // default: 50
}

type service struct {
	repo   notification.Repository
	config Config

	mu   sync.Mutex
	last notification.ListParams
}

// NewNotificationService creates the history service. The backend owns every
// entry; after a mutation the last listed page is fetched again rather than
// patched locally.
func NewNotificationService(repo notification.Repository, cfg Config) notification.HistoryService {
	if cfg.PageSize == 0 {
		cfg.PageSize = 50
	}
	return &service{
		repo:   repo,
		config: cfg,
		last:   notification.ListParams{Limit: cfg.PageSize},
	}
}

// List fetches a page of history and remembers the query
func (s *service) List(ctx context.Context, params notification.ListParams) (*notification.HistoryResponse, error) {
	if params.Limit == 0 {
		params.Limit = s.config.PageSize
	}

	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = params
	s.mu.Unlock()

	return &notification.HistoryResponse{Notifications: nonNil(entries), Params: params}, nil
}

func (s *service) Stats(ctx context.Context) (*notification.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *service) MarkAsRead(ctx context.Context, req notification.MarkAsReadRequest) (*notification.HistoryResponse, error) {
	if len(req.NotificationIDs) == 0 {
		return nil, fmt.Errorf("%w: no notification ids", notification.ErrNotificationNotFound)
	}
	return s.mutate(ctx, "mark read", func() error {
		return s.repo.MarkAsRead(ctx, req.NotificationIDs)
	})
}

func (s *service) MarkAllAsRead(ctx context.Context) (*notification.HistoryResponse, error) {
	return s.mutate(ctx, "mark all read", func() error {
		return s.repo.MarkAllAsRead(ctx)
	})
}

func (s *service) MarkAsClicked(ctx context.Context, id int64) (*notification.HistoryResponse, error) {
	return s.mutate(ctx, "mark clicked", func() error {
		return s.repo.MarkAsClicked(ctx, id)
	})
}

func (s *service) Delete(ctx context.Context, id int64) (*notification.HistoryResponse, error) {
	return s.mutate(ctx, "delete", func() error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *service) DeleteAll(ctx context.Context) (*notification.HistoryResponse, error) {
	return s.mutate(ctx, "delete all", func() error {
		return s.repo.DeleteAll(ctx)
	})
}

func (s *service) mutate(ctx context.Context, op string, fn func() error) (*notification.HistoryResponse, error) {
	if err := fn(); err != nil {
		log.Printf("[NotificationService] %s failed: %v", op, err)
		return nil, err
	}

	s.mu.Lock()
	params := s.last
	s.mu.Unlock()

	return s.List(ctx, params)
}

func nonNil(entries []notification.HistoryEntry) []notification.HistoryEntry {
	if entries == nil {
		return []notification.HistoryEntry{}
	}
	return entries
}
