package apiclient

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
)

// AuthGateway implements session.Gateway
type AuthGateway struct {
	c *Client
}

var _ session.Gateway = (*AuthGateway)(nil)

func NewAuthGateway(c *Client) *AuthGateway {
	return &AuthGateway{c: c}
}

// Me fetches the user the given token belongs to
func (g *AuthGateway) Me(ctx context.Context, token string) (*session.User, error) {
	var user session.User
	err := g.c.do(ctx, request{
		name:   "auth.me",
		method: http.MethodGet,
		path:   "/api/auth/me",
		token:  token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *AuthGateway) Login(ctx context.Context, req session.LoginRequest) (*session.AuthResponse, error) {
	var resp session.AuthResponse
	err := g.c.do(ctx, request{
		name:   "auth.login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *AuthGateway) Register(ctx context.Context, req session.RegisterRequest) (*session.AuthResponse, error) {
	var resp session.AuthResponse
	err := g.c.do(ctx, request{
		name:   "auth.register",
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *AuthGateway) Onboarding(ctx context.Context, req session.OnboardingRequest) error {
	return g.c.do(ctx, request{
		name:   "auth.onboarding",
		method: http.MethodPost,
		path:   "/api/auth/onboarding",
		body:   req,
		auth:   true,
	}, nil)
}
