package notification

import (
	"time"
)

const (
	DefaultTitle = "New Job Alert!"
	DefaultBody  = "A new job matching your preferences is available"
	DefaultIcon  = "/logos.png"
	DefaultURL   = "/"
	DefaultTag   = "job-alert"
	DefaultBadge = "/badge.png"
)

// ActionType identifies a notification button
type ActionType string

const (
	ActionView  ActionType = "view"
	ActionClose ActionType = "close"
	// ActionNone is a click on the notification body rather than a button.
	ActionNone ActionType = ""
)

// Action is a button rendered on a notification
type Action struct {
	Action ActionType `json:"action"`
	Title  string     `json:"title"`
}

// DefaultActions returns the fixed action set shown on every job alert
func DefaultActions() []Action {
	return []Action{
		{Action: ActionView, Title: "View Job"},
		{Action: ActionClose, Title: "Close"},
	}
}

// DefaultVibrate returns the fixed vibration pattern in milliseconds
func DefaultVibrate() []int {
	return []int{200, 100, 200}
}

// Data travels with a displayed notification and drives click routing
type Data struct {
	URL   string `json:"url"`
	JobID any    `json:"jobId,omitempty"`
}

// Options configures how a notification is presented
type Options struct {
	Body               string   `json:"body"`
	Icon               string   `json:"icon"`
	Badge              string   `json:"badge"`
	Data               Data     `json:"data"`
	Actions            []Action `json:"actions"`
	Tag                string   `json:"tag"`
	RequireInteraction bool     `json:"requireInteraction"`
	Vibrate            []int    `json:"vibrate"`
}

// Notification is a notification currently visible in the tray
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Options   Options   `json:"options"`
	ShownAt   time.Time `json:"shown_at"`
	Replaced  string    `json:"replaced,omitempty"`
	closeFunc func()
}

// Close removes the notification from the tray.
func (n *Notification) Close() {
	if n != nil && n.closeFunc != nil {
		n.closeFunc()
	}
}

// WithCloser attaches the tray callback used by Close
func (n *Notification) WithCloser(fn func()) *Notification {
	n.closeFunc = fn
	return n
}

// HistoryEntry is a server-owned record of a sent notification
type HistoryEntry struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	JobID            *int64     `json:"job_id,omitempty"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	NotificationType string     `json:"notification_type"`
	JobTitle         *string    `json:"job_title,omitempty"`
	JobCategory      *string    `json:"job_category,omitempty"`
	JobURL           *string    `json:"job_url,omitempty"`
	IsRead           bool       `json:"is_read"`
	IsClicked        bool       `json:"is_clicked"`
	SentViaEmail     bool       `json:"sent_via_email"`
	SentViaTelegram  bool       `json:"sent_via_telegram"`
	SentViaPush      bool       `json:"sent_via_push"`
	SentAt           time.Time  `json:"sent_at"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	ClickedAt        *time.Time `json:"clicked_at,omitempty"`
}

// Stats summarises the notification history
type Stats struct {
	Total    int `json:"total"`
	Unread   int `json:"unread"`
	Read     int `json:"read"`
	Clicked  int `json:"clicked"`
	Today    int `json:"today"`
	ThisWeek int `json:"this_week"`
}
