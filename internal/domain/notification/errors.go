package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPayload       = errors.New("invalid push payload")
	ErrInvalidAction        = errors.New("invalid notification action")
	ErrEmptyTitle           = errors.New("notification title is required")
)
