package push

import (
	"context"
)

// Manager owns the push subscription lifecycle for one installation
type Manager interface {
	IsSupported() bool
	IsSubscribed(ctx context.Context) (bool, error)
	// SubscribeToPush returns a nil subscription on every failure path.
	SubscribeToPush(ctx context.Context, userID string) (*Subscription, error)
	// RefreshSubscription re-registers an existing subscription and never creates one.
	RefreshSubscription(ctx context.Context) (*Subscription, error)
	Unsubscribe(ctx context.Context, userID string) (bool, error)
	TestNotification(ctx context.Context) error
	SendServerTest(ctx context.Context) (string, error)
	// SendLoopbackTest pushes an encrypted test message to the installation's own endpoint.
	SendLoopbackTest(ctx context.Context) error

	Permission() Permission
	SetPermission(ctx context.Context, p Permission) error
	Subscription(ctx context.Context) (*Subscription, error)
}
