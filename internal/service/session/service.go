package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/oauth2"
)

type service struct {
	repo    session.Repository
	gateway session.Gateway

	mu      sync.RWMutex
	current *session.Session
	now     func() time.Time
}

// NewSessionService creates the session manager. Call Load to restore a
// previously saved session.
func NewSessionService(repo session.Repository, gateway session.Gateway) session.Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		now:     time.Now,
	}
}

// Load restores the saved session. An expired session is cleared.
func (s *service) Load(ctx context.Context) (*session.Session, error) {
	sess, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.set(nil)
		}
		return nil, err
	}

	if sess.Expired(s.now()) {
		log.Printf("[SessionService] Saved session expired at %s, clearing", sess.ExpiresAt.Format(time.RFC3339))
		if err := s.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, session.ErrTokenExpired
	}

	s.set(sess)
	return copySession(sess), nil
}

// HandleCallback stores the token handed back by the login flow and fetches
// the user it belongs to. Nothing is kept when the user cannot be fetched.
func (s *service) HandleCallback(ctx context.Context, token string) (*session.User, error) {
	if token == "" {
		return nil, session.ErrInvalidToken
	}

	user, err := s.gateway.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}

	if err := s.save(ctx, token, user); err != nil {
		return nil, err
	}
	log.Printf("[SessionService] Logged in as %s", user.Email)
	return user, nil
}

// Login authenticates with email and password
func (s *service) Login(ctx context.Context, req session.LoginRequest) (*session.User, error) {
	resp, err := s.gateway.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.completeAuth(ctx, resp)
}

// Register creates an account and signs in with it
func (s *service) Register(ctx context.Context, req session.RegisterRequest) (*session.User, error) {
	resp, err := s.gateway.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.completeAuth(ctx, resp)
}

// Onboarding finishes registration and refreshes the cached user
func (s *service) Onboarding(ctx context.Context, req session.OnboardingRequest) error {
	sess := s.Current()
	if sess == nil {
		return session.ErrNotAuthenticated
	}
	if err := s.gateway.Onboarding(ctx, req); err != nil {
		return err
	}

	user, err := s.gateway.Me(ctx, sess.Token)
	if err != nil {
		log.Printf("[SessionService] Refresh user after onboarding failed: %v", err)
		return nil
	}
	return s.save(ctx, sess.Token, user)
}

// Clear logs out
func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	s.set(nil)
	return nil
}

func (s *service) Current() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.current)
}

func (s *service) CurrentUser() *session.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.User == nil {
		return nil
	}
	u := *s.current.User
	return &u
}

// IsAuthenticated reports a present, unexpired token
func (s *service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Token != "" && !s.current.Expired(s.now())
}

// TokenSource yields the current bearer token for every outgoing request
func (s *service) TokenSource() oauth2.TokenSource {
	return tokenSource{s}
}

func (s *service) completeAuth(ctx context.Context, resp *session.AuthResponse) (*session.User, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, session.ErrInvalidToken
	}

	user := resp.User
	if user == nil {
		var err error
		user, err = s.gateway.Me(ctx, resp.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("fetch current user: %w", err)
		}
	}

	if err := s.save(ctx, resp.AccessToken, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) save(ctx context.Context, token string, user *session.User) error {
	sess := &session.Session{
		Token:     token,
		User:      user,
		ExpiresAt: tokenExpiry(token),
		SavedAt:   s.now(),
	}
	if sess.Expired(s.now()) {
		return session.ErrTokenExpired
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.set(sess)
	return nil
}

func (s *service) set(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
}

// tokenExpiry reads the exp claim. The backend signs its tokens; the agent
// only needs the expiry, so the signature is not verified here. Opaque
// tokens have no expiry.
func tokenExpiry(token string) time.Time {
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return time.Time{}
	}
	return parsed.Expiration()
}

func copySession(sess *session.Session) *session.Session {
	if sess == nil {
		return nil
	}
	out := *sess
	if sess.User != nil {
		u := *sess.User
		out.User = &u
	}
	return &out
}

type tokenSource struct {
	s *service
}

// Token implements oauth2.TokenSource
func (t tokenSource) Token() (*oauth2.Token, error) {
	sess := t.s.Current()
	if sess == nil || sess.Token == "" {
		return nil, session.ErrNotAuthenticated
	}
	if sess.Expired(t.s.now()) {
		return nil, session.ErrTokenExpired
	}
	return &oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt,
	}, nil
}
