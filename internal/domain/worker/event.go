package worker

import (
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
)

// EventType enumerates the events a worker runtime dispatches
type EventType int

const (
	EventInstall EventType = iota + 1
	EventActivate
	EventPush
	EventNotificationClick
)

func (t EventType) String() string {
	switch t {
	case EventInstall:
		return "install"
	case EventActivate:
		return "activate"
	case EventPush:
		return "push"
	case EventNotificationClick:
		return "notificationclick"
	default:
		return "unknown"
	}
}

// Event is a unit of work delivered to the runtime
type Event interface {
	Type() EventType
}

type InstallEvent struct{}

func (InstallEvent) Type() EventType { return EventInstall }

type ActivateEvent struct{}

func (ActivateEvent) Type() EventType { return EventActivate }

// PushEvent carries the decrypted push body. Data is nil when the push had no payload.
type PushEvent struct {
	Data []byte
}

func (PushEvent) Type() EventType { return EventPush }

// NotificationClickEvent is a user interaction with a displayed notification
type NotificationClickEvent struct {
	Notification *notification.Notification
	Action       notification.ActionType
}

func (NotificationClickEvent) Type() EventType { return EventNotificationClick }

// State is the lifecycle state of a worker runtime
type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateStopped    State = "stopped"
)
