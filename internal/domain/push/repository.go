package push

import (
	"context"
)

// Repository persists the installation's subscription
type Repository interface {
	Get(ctx context.Context, installationID string) (*Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, installationID string) error
}

// Gateway is the backend side of the subscription lifecycle
type Gateway interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	Subscribe(ctx context.Context, req SubscribeRequest) error
	Unsubscribe(ctx context.Context) error
	SendTest(ctx context.Context) (string, error)
}

// Sender delivers an encrypted push to a subscription endpoint
type Sender interface {
	Send(ctx context.Context, endpoint, p256dh, auth string, payload []byte) error
}
