package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	saved   *session.Session
	saveErr error
}

func (r *memoryRepo) Load(context.Context) (*session.Session, error) {
	if r.saved == nil {
		return nil, session.ErrSessionNotFound
	}
	s := *r.saved
	return &s, nil
}

func (r *memoryRepo) Save(_ context.Context, s *session.Session) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *s
	r.saved = &cp
	return nil
}

func (r *memoryRepo) Clear(context.Context) error {
	r.saved = nil
	return nil
}

type fakeGateway struct {
	user   *session.User
	meErr  error
	tokens []string
	auth   *session.AuthResponse
}

func (g *fakeGateway) Me(_ context.Context, token string) (*session.User, error) {
	g.tokens = append(g.tokens, token)
	if g.meErr != nil {
		return nil, g.meErr
	}
	return g.user, nil
}

func (g *fakeGateway) Login(context.Context, session.LoginRequest) (*session.AuthResponse, error) {
	return g.auth, nil
}

func (g *fakeGateway) Register(context.Context, session.RegisterRequest) (*session.AuthResponse, error) {
	return g.auth, nil
}

func (g *fakeGateway) Onboarding(context.Context, session.OnboardingRequest) error {
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().Subject("42").Expiration(exp).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte("backend-secret")))
	require.NoError(t, err)
	return string(signed)
}

func testUser() *session.User {
	return &session.User{ID: 42, Email: "dev@example.com", Username: "dev"}
}

func TestSession_HandleCallbackSavesTokenAndUser(t *testing.T) {
	repo := &memoryRepo{}
	gw := &fakeGateway{user: testUser()}
	svc := NewSessionService(repo, gw)
	token := signedToken(t, time.Now().Add(time.Hour))

	user, err := svc.HandleCallback(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, []string{token}, gw.tokens)

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "dev@example.com", svc.CurrentUser().Email)
	require.NotNil(t, repo.saved)
	assert.Equal(t, token, repo.saved.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), repo.saved.ExpiresAt, time.Minute)

	tok, err := svc.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, token, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestSession_HandleCallbackFailureKeepsNothing(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewSessionService(repo, &fakeGateway{meErr: errors.New("401")})

	_, err := svc.HandleCallback(context.Background(), "opaque-token")
	assert.Error(t, err)
	assert.Nil(t, repo.saved)
	assert.False(t, svc.IsAuthenticated())

	_, err = svc.HandleCallback(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestSession_ExpiredTokenRejected(t *testing.T) {
	svc := NewSessionService(&memoryRepo{}, &fakeGateway{user: testUser()})

	_, err := svc.HandleCallback(context.Background(), signedToken(t, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, session.ErrTokenExpired)
	assert.False(t, svc.IsAuthenticated())
}

func TestSession_OpaqueTokenHasNoExpiry(t *testing.T) {
	svc := NewSessionService(&memoryRepo{}, &fakeGateway{user: testUser()})

	_, err := svc.HandleCallback(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.True(t, svc.IsAuthenticated())
	assert.True(t, svc.Current().ExpiresAt.IsZero())
}

func TestSession_LoadRestoresAndClearsExpired(t *testing.T) {
	ctx := context.Background()

	repo := &memoryRepo{saved: &session.Session{Token: "t", User: testUser(), ExpiresAt: time.Now().Add(time.Hour)}}
	svc := NewSessionService(repo, &fakeGateway{})
	sess, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t", sess.Token)
	assert.True(t, svc.IsAuthenticated())

	expired := &memoryRepo{saved: &session.Session{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}}
	svc = NewSessionService(expired, &fakeGateway{})
	_, err = svc.Load(ctx)
	assert.ErrorIs(t, err, session.ErrTokenExpired)
	assert.Nil(t, expired.saved)
	assert.False(t, svc.IsAuthenticated())

	svc = NewSessionService(&memoryRepo{}, &fakeGateway{})
	_, err = svc.Load(ctx)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSession_LoginAndClear(t *testing.T) {
	repo := &memoryRepo{}
	gw := &fakeGateway{user: testUser(), auth: &session.AuthResponse{AccessToken: "login-token", TokenType: "bearer"}}
	svc := NewSessionService(repo, gw)
	ctx := context.Background()

	user, err := svc.Login(ctx, session.LoginRequest{Email: "dev@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "dev", user.Username)
	assert.Equal(t, []string{"login-token"}, gw.tokens)

	require.NoError(t, svc.Clear(ctx))
	assert.Nil(t, repo.saved)
	assert.Nil(t, svc.Current())
	assert.Nil(t, svc.CurrentUser())

	_, err = svc.TokenSource().Token()
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestSession_OnboardingRequiresSession(t *testing.T) {
	svc := NewSessionService(&memoryRepo{}, &fakeGateway{user: testUser()})

	err := svc.Onboarding(context.Background(), session.OnboardingRequest{Preferences: []string{"go"}, AlertSpeed: "instant"})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}
