package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	state        settings.UserSettings
	err          error
	disconnected []string
}

func (r *fakeRepo) result() (*settings.UserSettings, error) {
	if r.err != nil {
		return nil, r.err
	}
	cp := r.state
	return &cp, nil
}

func (r *fakeRepo) Get(context.Context) (*settings.UserSettings, error) { return r.result() }

func (r *fakeRepo) UpdateProfile(_ context.Context, req settings.ProfileUpdate) (*settings.UserSettings, error) {
	if r.err == nil && req.DisplayName != nil {
		r.state.DisplayName = req.DisplayName
	}
	return r.result()
}

func (r *fakeRepo) UpdateContactChannels(_ context.Context, req settings.ContactChannels) (*settings.UserSettings, error) {
	if r.err == nil && req.Email != nil {
		r.state.Email = *req.Email
	}
	return r.result()
}

func (r *fakeRepo) UpdateAlertSettings(_ context.Context, req settings.AlertSettings) (*settings.UserSettings, error) {
	if r.err == nil && req.AlertSpeed != nil {
		r.state.AlertSpeed = *req.AlertSpeed
	}
	return r.result()
}

func (r *fakeRepo) UpdatePreferences(_ context.Context, prefs []string) (*settings.UserSettings, error) {
	if r.err == nil {
		r.state.Preferences = prefs
	}
	return r.result()
}

func (r *fakeRepo) DisconnectAccount(_ context.Context, provider string) error {
	if r.err != nil {
		return r.err
	}
	r.disconnected = append(r.disconnected, provider)
	return nil
}

func (r *fakeRepo) Stats(context.Context) (*settings.UserStats, error) {
	return &settings.UserStats{AlertsToday: 3, NotificationStatus: "active"}, nil
}

func ptr[T any](v T) *T { return &v }

func TestSettings_UpdateReturnsServerState(t *testing.T) {
	repo := &fakeRepo{state: settings.UserSettings{ID: 1, AlertSpeed: "hourly"}}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	us, err := svc.UpdateAlertSettings(ctx, settings.AlertSettings{AlertSpeed: ptr("instant")})
	require.NoError(t, err)
	assert.Equal(t, "instant", us.AlertSpeed)
	assert.Equal(t, "instant", svc.Current().AlertSpeed)
}

func TestSettings_FailedUpdateKeepsPreviousState(t *testing.T) {
	repo := &fakeRepo{state: settings.UserSettings{ID: 1, Email: "old@example.com"}}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	repo.err = errors.New("backend down")
	us, err := svc.UpdateContactChannels(ctx, settings.ContactChannels{Email: ptr("new@example.com")})
	assert.Error(t, err)
	assert.Nil(t, us)
	assert.Equal(t, "old@example.com", svc.Current().Email)
}

func TestSettings_UpdatePreferencesValidatesCategories(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	_, err := svc.UpdatePreferences(ctx, []string{"web_development", "astrology"})
	assert.ErrorIs(t, err, settings.ErrInvalidCategory)
	assert.Nil(t, repo.state.Preferences)

	us, err := svc.UpdatePreferences(ctx, []string{"web_development"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web_development"}, us.Preferences)
}

func TestSettings_DisconnectAccount(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewSettingsService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DisconnectAccount(ctx, "myspace"), settings.ErrInvalidProvider)
	require.NoError(t, svc.DisconnectAccount(ctx, "google"))
	assert.Equal(t, []string{"google"}, repo.disconnected)
	assert.NotNil(t, svc.Current())
}

func TestSettings_Stats(t *testing.T) {
	svc := NewSettingsService(&fakeRepo{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.AlertsToday)
}
