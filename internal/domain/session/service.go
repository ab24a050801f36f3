package session

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the session lifecycle
type Service interface {
	Load(ctx context.Context) (*Session, error)
	HandleCallback(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Onboarding(ctx context.Context, req OnboardingRequest) error
	Clear(ctx context.Context) error

	Current() *Session
	CurrentUser() *User
	IsAuthenticated() bool

	// TokenSource feeds the bearer token of the current session to API clients.
	TokenSource() oauth2.TokenSource
}
