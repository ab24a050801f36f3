package settings

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidProvider = errors.New("invalid account provider")

// UserSettings is the profile page state
type UserSettings struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	DisplayName        *string   `json:"display_name,omitempty"`
	ProfileImage       *string   `json:"profile_image,omitempty"`
	Preferences        []string  `json:"preferences"`
	TelegramChatID     *string   `json:"telegram_chat_id,omitempty"`
	AlertSpeed         string    `json:"alert_speed"`
	Keywords           []string  `json:"keywords"`
	InAppNotifications bool      `json:"in_app_notifications"`
	MemberSince        time.Time `json:"member_since"`
}

// UserStats is the settings sidebar summary
type UserStats struct {
	AlertsToday        int    `json:"alerts_today"`
	SavedJobs          int    `json:"saved_jobs"`
	Subscribers        int    `json:"subscribers"`
	NotificationStatus string `json:"notification_status"`
}

// ProfileUpdate changes name or avatar
type ProfileUpdate struct {
	DisplayName  *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	ProfileImage *string `json:"profile_image,omitempty" validate:"omitempty,url"`
}

// ContactChannels changes where alerts are delivered
type ContactChannels struct {
	Email              *string `json:"email,omitempty" validate:"omitempty,email"`
	TelegramUsername   *string `json:"telegram_username,omitempty"`
	InAppNotifications *bool   `json:"in_app_notifications,omitempty"`
}

// AlertSettings changes alert speed and keyword filters
type AlertSettings struct {
	AlertSpeed *string  `json:"alert_speed,omitempty" validate:"omitempty,oneof=instant 30min hourly"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Repository is the backend settings surface
type Repository interface {
	Get(ctx context.Context) (*UserSettings, error)
	UpdateProfile(ctx context.Context, req ProfileUpdate) (*UserSettings, error)
	UpdateContactChannels(ctx context.Context, req ContactChannels) (*UserSettings, error)
	UpdateAlertSettings(ctx context.Context, req AlertSettings) (*UserSettings, error)
	UpdatePreferences(ctx context.Context, preferences []string) (*UserSettings, error)
	DisconnectAccount(ctx context.Context, provider string) error
	Stats(ctx context.Context) (*UserStats, error)
}

var ErrInvalidCategory = errors.New("invalid job category")

// PreferencesUpdate replaces the subscribed job categories
type PreferencesUpdate struct {
	Preferences []string `json:"preferences" validate:"required"`
}
