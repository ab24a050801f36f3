package notification

import (
	"context"
)

// Registration displays notifications on behalf of the worker
type Registration interface {
	ShowNotification(ctx context.Context, title string, opts Options) (*Notification, error)
}

// Tray is the visible set of notifications, keyed by tag
type Tray interface {
	Registration
	Get(id string) (*Notification, bool)
	List() []Notification
	Close(id string) bool
}

// HistoryService defines the notification history operations
type HistoryService interface {
	List(ctx context.Context, params ListParams) (*HistoryResponse, error)
	Stats(ctx context.Context) (*Stats, error)

	// Mutations re-fetch the last listed page and return it.
	MarkAsRead(ctx context.Context, req MarkAsReadRequest) (*HistoryResponse, error)
	MarkAllAsRead(ctx context.Context) (*HistoryResponse, error)
	MarkAsClicked(ctx context.Context, id int64) (*HistoryResponse, error)
	Delete(ctx context.Context, id int64) (*HistoryResponse, error)
	DeleteAll(ctx context.Context) (*HistoryResponse, error)
}
