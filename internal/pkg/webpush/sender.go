package webpush

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

// Sender delivers pushes the way an application server does: VAPID-signed
// and aes128gcm encrypted. The agent uses it to exercise its own receiver.
type Sender struct {
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
	ttl             int
	client          *http.Client
}

// NewSender creates a sender with a fresh VAPID key pair
func NewSender(subscriber string, ttl int, client *http.Client) (*Sender, error) {
	privateKey, publicKey, err := webpushgo.GenerateVAPIDKeys()
	if err != nil {
		return nil, fmt.Errorf("generate vapid keys: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if ttl <= 0 {
		ttl = 60
	}
	return &Sender{
		subscriber:      subscriber,
		vapidPublicKey:  publicKey,
		vapidPrivateKey: privateKey,
		ttl:             ttl,
		client:          client,
	}, nil
}

// VAPIDPublicKey returns the sender's application server key
func (s *Sender) VAPIDPublicKey() string {
	return s.vapidPublicKey
}

// Send encrypts payload for the subscription and posts it to endpoint
func (s *Sender) Send(ctx context.Context, endpoint, p256dh, auth string, payload []byte) error {
	sub := &webpushgo.Subscription{
		Endpoint: endpoint,
		Keys: webpushgo.Keys{
			P256dh: p256dh,
			Auth:   auth,
		},
	}

	resp, err := webpushgo.SendNotificationWithContext(ctx, payload, sub, &webpushgo.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send push: endpoint returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
