package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
)

// NotificationRepository implements notification.Repository over the backend
type NotificationRepository struct {
	c *Client
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(c *Client) *NotificationRepository {
	return &NotificationRepository{c: c}
}

func (r *NotificationRepository) List(ctx context.Context, params notification.ListParams) ([]notification.HistoryEntry, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(params.Skip))
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.NotificationType != "" {
		q.Set("notification_type", params.NotificationType)
	}
	if params.IsRead != nil {
		q.Set("is_read", strconv.FormatBool(*params.IsRead))
	}

	var entries []notification.HistoryEntry
	err := r.c.do(ctx, request{
		name:   "notifications.list",
		method: http.MethodGet,
		path:   "/api/notifications",
		query:  q,
		auth:   true,
	}, &entries)
	return entries, err
}

func (r *NotificationRepository) Stats(ctx context.Context) (*notification.Stats, error) {
	var st notification.Stats
	err := r.c.do(ctx, request{
		name:   "notifications.stats",
		method: http.MethodGet,
		path:   "/api/notifications/stats",
		auth:   true,
	}, &st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, ids []int64) error {
	return r.c.do(ctx, request{
		name:   "notifications.mark_read",
		method: http.MethodPost,
		path:   "/api/notifications/mark-read",
		body:   notification.MarkAsReadRequest{NotificationIDs: ids},
		auth:   true,
	}, nil)
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context) error {
	return r.c.do(ctx, request{
		name:   "notifications.mark_all_read",
		method: http.MethodPost,
		path:   "/api/notifications/mark-all-read",
		auth:   true,
	}, nil)
}

func (r *NotificationRepository) MarkAsClicked(ctx context.Context, id int64) error {
	return r.notFound(r.c.do(ctx, request{
		name:   "notifications.click",
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/notifications/%d/click", id),
		auth:   true,
	}, nil))
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	return r.notFound(r.c.do(ctx, request{
		name:   "notifications.delete",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/notifications/%d", id),
		auth:   true,
	}, nil))
}

func (r *NotificationRepository) DeleteAll(ctx context.Context) error {
	return r.c.do(ctx, request{
		name:   "notifications.delete_all",
		method: http.MethodDelete,
		path:   "/api/notifications",
		auth:   true,
	}, nil)
}

func (r *NotificationRepository) notFound(err error) error {
	if statusIs(err, http.StatusNotFound) {
		return fmt.Errorf("%w: %v", notification.ErrNotificationNotFound, err)
	}
	return err
}
