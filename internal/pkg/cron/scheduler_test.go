package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsJobsUntilStopped(t *testing.T) {
	s := NewScheduler(testLogger())
	var runs atomic.Int32
	s.AddJob("tick", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.AddJob("disabled", 0, func(context.Context) error {
		t.Error("disabled job ran")
		return nil
	})
	assert.Equal(t, []string{"tick"}, s.Jobs())

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler(testLogger())
	boom := errors.New("boom")
	s.AddJob("ok", time.Hour, func(context.Context) error { return nil })
	s.AddJob("fails", time.Hour, func(context.Context) error { return boom })

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
}

type stubManager struct {
	push.Manager
	supported  bool
	sub        *push.Subscription
	subscribed []string
	refreshed  int
}

func (m *stubManager) IsSupported() bool { return m.supported }

func (m *stubManager) Subscription(context.Context) (*push.Subscription, error) {
	if m.sub == nil {
		return nil, push.ErrSubscriptionNotFound
	}
	return m.sub, nil
}

func (m *stubManager) SubscribeToPush(_ context.Context, userID string) (*push.Subscription, error) {
	m.subscribed = append(m.subscribed, userID)
	return m.sub, nil
}

func (m *stubManager) RefreshSubscription(context.Context) (*push.Subscription, error) {
	if m.sub == nil {
		return nil, push.ErrSubscriptionNotFound
	}
	m.refreshed++
	return m.sub, nil
}

type stubSession struct {
	current *session.Session
	cleared bool
}

func (s *stubSession) Load(context.Context) (*session.Session, error) { return s.current, nil }
func (s *stubSession) HandleCallback(context.Context, string) (*session.User, error) {
	return nil, nil
}
func (s *stubSession) Login(context.Context, session.LoginRequest) (*session.User, error) {
	return nil, nil
}
func (s *stubSession) Register(context.Context, session.RegisterRequest) (*session.User, error) {
	return nil, nil
}
func (s *stubSession) Onboarding(context.Context, session.OnboardingRequest) error { return nil }
func (s *stubSession) Clear(context.Context) error {
	s.cleared = true
	s.current = nil
	return nil
}
func (s *stubSession) Current() *session.Session { return s.current }
func (s *stubSession) CurrentUser() *session.User {
	if s.current == nil {
		return nil
	}
	return s.current.User
}
func (s *stubSession) IsAuthenticated() bool {
	return s.current != nil && !s.current.Expired(time.Now())
}
func (s *stubSession) TokenSource() oauth2.TokenSource { return nil }

func TestAgentJobs_SyncPushSubscription(t *testing.T) {
	ctx := context.Background()
	signedIn := &stubSession{current: &session.Session{Token: "t", User: &session.User{ID: 42}}}

	m := &stubManager{supported: true}
	require.NoError(t, NewAgentJobs(m, signedIn).SyncPushSubscription(ctx))
	assert.Zero(t, m.refreshed, "no subscription, nothing to sync")

	m.sub = &push.Subscription{InstallationID: "inst-1"}
	require.NoError(t, NewAgentJobs(m, signedIn).SyncPushSubscription(ctx))
	assert.Equal(t, 1, m.refreshed)

	require.NoError(t, NewAgentJobs(m, &stubSession{}).SyncPushSubscription(ctx))
	assert.Equal(t, 1, m.refreshed)

	// The sync only re-registers; it never creates a subscription.
	assert.Empty(t, m.subscribed)
}

func TestAgentJobs_CheckSessionExpiry(t *testing.T) {
	ctx := context.Background()

	valid := &stubSession{current: &session.Session{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}}
	require.NoError(t, NewAgentJobs(&stubManager{}, valid).CheckSessionExpiry(ctx))
	assert.False(t, valid.cleared)

	expired := &stubSession{current: &session.Session{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}}
	require.NoError(t, NewAgentJobs(&stubManager{}, expired).CheckSessionExpiry(ctx))
	assert.True(t, expired.cleared)
}

func TestAgentJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler(testLogger())
	NewAgentJobs(&stubManager{}, &stubSession{}).RegisterJobs(s, time.Hour, time.Minute)
	assert.Equal(t, []string{"push_subscription_sync", "session_expiry_check"}, s.Jobs())
}
