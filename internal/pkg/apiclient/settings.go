package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/settings"
)

// SettingsRepository implements settings.Repository over the backend. The
// update endpoints answer with differing acknowledgement shapes, so every
// update is followed by a read of the profile.
type SettingsRepository struct {
	c *Client
}

var _ settings.Repository = (*SettingsRepository)(nil)

func NewSettingsRepository(c *Client) *SettingsRepository {
	return &SettingsRepository{c: c}
}

func (r *SettingsRepository) Get(ctx context.Context) (*settings.UserSettings, error) {
	var us settings.UserSettings
	err := r.c.do(ctx, request{
		name:   "settings.profile",
		method: http.MethodGet,
		path:   "/api/settings/profile",
		auth:   true,
	}, &us)
	if err != nil {
		return nil, err
	}
	return &us, nil
}

func (r *SettingsRepository) UpdateProfile(ctx context.Context, req settings.ProfileUpdate) (*settings.UserSettings, error) {
	return r.put(ctx, "settings.update_profile", "/api/settings/profile", req)
}

func (r *SettingsRepository) UpdateContactChannels(ctx context.Context, req settings.ContactChannels) (*settings.UserSettings, error) {
	return r.put(ctx, "settings.contact_channels", "/api/settings/contact-channels", req)
}

func (r *SettingsRepository) UpdateAlertSettings(ctx context.Context, req settings.AlertSettings) (*settings.UserSettings, error) {
	return r.put(ctx, "settings.alerts", "/api/settings/alerts", req)
}

func (r *SettingsRepository) UpdatePreferences(ctx context.Context, preferences []string) (*settings.UserSettings, error) {
	if preferences == nil {
		preferences = []string{}
	}
	return r.put(ctx, "settings.preferences", "/api/settings/preferences", preferences)
}

func (r *SettingsRepository) DisconnectAccount(ctx context.Context, provider string) error {
	err := r.c.do(ctx, request{
		name:   "settings.disconnect_account",
		method: http.MethodDelete,
		path:   "/api/settings/disconnect-account",
		query:  url.Values{"provider": {provider}},
		auth:   true,
	}, nil)
	if statusIs(err, http.StatusBadRequest) {
		return settings.ErrInvalidProvider
	}
	return err
}

func (r *SettingsRepository) Stats(ctx context.Context) (*settings.UserStats, error) {
	var st settings.UserStats
	err := r.c.do(ctx, request{
		name:   "settings.stats",
		method: http.MethodGet,
		path:   "/api/settings/stats",
		auth:   true,
	}, &st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *SettingsRepository) put(ctx context.Context, name, path string, body any) (*settings.UserSettings, error) {
	err := r.c.do(ctx, request{
		name:   name,
		method: http.MethodPut,
		path:   path,
		body:   body,
		auth:   true,
	}, nil)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx)
}
