package notification

import (
	"context"
)

// Repository defines the notification history store. History is owned by the
// job-alert backend, so implementations are API clients.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]HistoryEntry, error)
	Stats(ctx context.Context) (*Stats, error)
	MarkAsRead(ctx context.Context, ids []int64) error
	MarkAllAsRead(ctx context.Context) error
	MarkAsClicked(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
