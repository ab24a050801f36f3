// Package tray keeps the set of visible notifications for the installation.
// Notifications sharing a tag replace each other instead of stacking.
package tray

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/sse"
	"github.com/google/uuid"
)

type Tray struct {
	mu      sync.Mutex
	byID    map[string]*notification.Notification
	byTag   map[string]string
	hub     *sse.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

var _ notification.Tray = (*Tray)(nil)

func New(hub *sse.Hub, m *metrics.Metrics, logger *slog.Logger) *Tray {
	return &Tray{
		byID:    make(map[string]*notification.Notification),
		byTag:   make(map[string]string),
		hub:     hub,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ShowNotification displays a notification, replacing any visible one with the same tag
func (t *Tray) ShowNotification(ctx context.Context, title string, opts notification.Options) (*notification.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, notification.ErrEmptyTitle
	}

	n := &notification.Notification{
		ID:      uuid.New().String(),
		Title:   title,
		Options: opts,
		ShownAt: t.now(),
	}
	id := n.ID
	n.WithCloser(func() { t.Close(id) })

	t.mu.Lock()
	var replaced *notification.Notification
	if opts.Tag != "" {
		if oldID, ok := t.byTag[opts.Tag]; ok {
			replaced = t.byID[oldID]
			delete(t.byID, oldID)
			n.Replaced = oldID
		}
		t.byTag[opts.Tag] = n.ID
	}
	t.byID[n.ID] = n
	t.mu.Unlock()

	if replaced != nil {
		t.metrics.NotificationsReplaced.Inc()
		t.publish(notification.TrayEventReplaced, *replaced)
		t.logger.Debug("Notification replaced", "tag", opts.Tag, "old_id", replaced.ID, "new_id", n.ID)
	}
	t.metrics.NotificationsShown.Inc()
	t.publish(notification.TrayEventShown, *n)
	t.logger.Info("Notification shown", "id", n.ID, "tag", opts.Tag, "title", title)

	return n, nil
}

// Get returns a visible notification
func (t *Tray) Get(id string) (*notification.Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.byID[id]
	return n, ok
}

// List returns the visible notifications, oldest first
func (t *Tray) List() []notification.Notification {
	t.mu.Lock()
	out := make([]notification.Notification, 0, len(t.byID))
	for _, n := range t.byID {
		out = append(out, *n)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ShownAt.Before(out[j].ShownAt)
	})
	return out
}

// Close removes a notification. It reports whether the notification was visible.
func (t *Tray) Close(id string) bool {
	t.mu.Lock()
	n, ok := t.byID[id]
	if ok {
		delete(t.byID, id)
		if tag := n.Options.Tag; tag != "" && t.byTag[tag] == id {
			delete(t.byTag, tag)
		}
	}
	t.mu.Unlock()

	if ok {
		t.publish(notification.TrayEventClosed, *n)
	}
	return ok
}

func (t *Tray) publish(event string, n notification.Notification) {
	t.hub.Publish(sse.Event{
		Topic: sse.TopicTray,
		Event: event,
		Data:  notification.TrayEvent{Event: event, Notification: n},
	})
}
