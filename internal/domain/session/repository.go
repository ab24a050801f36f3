package session

import (
	"context"
)

// Repository persists the single application session
type Repository interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// Gateway is the backend auth surface
type Gateway interface {
	Me(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Onboarding(ctx context.Context, req OnboardingRequest) error
}
