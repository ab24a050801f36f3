package file

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) storage.FileStorage {
	t.Helper()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(newStorage(t))
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.Save(ctx, &session.Session{
		Token:     "tok",
		User:      &session.User{ID: 42, Email: "dev@example.com"},
		ExpiresAt: exp,
	}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, int64(42), got.User.ID)
	assert.True(t, exp.Equal(got.ExpiresAt))

	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSubscriptionRepository(t *testing.T) {
	repo := NewSubscriptionRepository(newStorage(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "inst-1")
	assert.ErrorIs(t, err, push.ErrSubscriptionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "inst-1"), push.ErrSubscriptionNotFound)

	sub := &push.Subscription{
		InstallationID: "inst-1",
		UserID:         "42",
		Endpoint:       "https://agent.example.com/push/inst-1",
		Keys:           push.Keys{P256dh: "pub", Auth: "auth"},
		PrivateKey:     "priv",
	}
	require.NoError(t, repo.Save(ctx, sub))

	got, err := repo.Get(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, sub.Endpoint, got.Endpoint)
	assert.Equal(t, sub.Keys, got.Keys)
	assert.Equal(t, "priv", got.PrivateKey)

	_, err = repo.Get(ctx, "inst-2")
	assert.ErrorIs(t, err, push.ErrSubscriptionNotFound)

	require.NoError(t, repo.Delete(ctx, "inst-1"))
	_, err = repo.Get(ctx, "inst-1")
	assert.ErrorIs(t, err, push.ErrSubscriptionNotFound)
}
