package apiclient

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
)

// PushGateway implements push.Gateway
type PushGateway struct {
	c *Client
}

var _ push.Gateway = (*PushGateway)(nil)

func NewPushGateway(c *Client) *PushGateway {
	return &PushGateway{c: c}
}

func (g *PushGateway) VAPIDPublicKey(ctx context.Context) (string, error) {
	var resp push.VAPIDKeyResponse
	err := g.c.do(ctx, request{
		name:   "push.vapid_public_key",
		method: http.MethodGet,
		path:   "/api/push/vapid-public-key",
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.PublicKey, nil
}

// Subscribe registers the subscription for the signed-in user
func (g *PushGateway) Subscribe(ctx context.Context, req push.SubscribeRequest) error {
	return g.c.do(ctx, request{
		name:   "push.subscribe",
		method: http.MethodPost,
		path:   "/api/push/subscribe",
		body:   req,
		auth:   true,
	}, nil)
}

// Unsubscribe deactivates every subscription of the signed-in user
func (g *PushGateway) Unsubscribe(ctx context.Context) error {
	return g.c.do(ctx, request{
		name:   "push.unsubscribe",
		method: http.MethodPost,
		path:   "/api/push/unsubscribe",
		auth:   true,
	}, nil)
}

// SendTest asks the backend to push a test message to every active subscription
func (g *PushGateway) SendTest(ctx context.Context) (string, error) {
	var resp push.MessageResponse
	err := g.c.do(ctx, request{
		name:   "push.send_test",
		method: http.MethodPost,
		path:   "/api/push/send-test",
		auth:   true,
	}, &resp)
	if statusIs(err, http.StatusNotFound) {
		return "", push.ErrNoActiveSubscription
	}
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
