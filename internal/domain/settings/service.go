package settings

import (
	"context"
)

// ValidCategories are the job categories a user can subscribe to
var ValidCategories = []string{
	"video_editing",
	"web_development",
	"content_writing",
	"graphic_design",
	"motion_graphics",
}

// Service manages the settings page. Updates return the server state; a
// failed update leaves the last known state untouched.
type Service interface {
	Get(ctx context.Context) (*UserSettings, error)
	Current() *UserSettings
	UpdateProfile(ctx context.Context, req ProfileUpdate) (*UserSettings, error)
	UpdateContactChannels(ctx context.Context, req ContactChannels) (*UserSettings, error)
	UpdateAlertSettings(ctx context.Context, req AlertSettings) (*UserSettings, error)
	UpdatePreferences(ctx context.Context, preferences []string) (*UserSettings, error)
	DisconnectAccount(ctx context.Context, provider string) error
	Stats(ctx context.Context) (*UserStats, error)
}
