package push

import "errors"

// Push domain errors
var (
	ErrNotSupported         = errors.New("push notifications are not supported")
	ErrPermissionDenied     = errors.New("notification permission denied")
	ErrSubscriptionNotFound = errors.New("push subscription not found")
	ErrNoActiveSubscription = errors.New("no active subscriptions")
	ErrNotLoggedIn          = errors.New("user is not logged in")
	ErrToggleInProgress     = errors.New("push toggle already in progress")
)
