package settings

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/settings"
)

var providers = []string{"twitter", "google"}

type service struct {
	repo settings.Repository

	mu      sync.RWMutex
	current *settings.UserSettings
}

// NewSettingsService creates the settings service
func NewSettingsService(repo settings.Repository) settings.Service {
	return &service{repo: repo}
}

// Get fetches settings from the backend and remembers them
func (s *service) Get(ctx context.Context) (*settings.UserSettings, error) {
	us, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.set(us)
	return us, nil
}

// Current returns the last settings the backend confirmed
func (s *service) Current() *settings.UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *service) UpdateProfile(ctx context.Context, req settings.ProfileUpdate) (*settings.UserSettings, error) {
	return s.apply("update profile", func() (*settings.UserSettings, error) {
		return s.repo.UpdateProfile(ctx, req)
	})
}

func (s *service) UpdateContactChannels(ctx context.Context, req settings.ContactChannels) (*settings.UserSettings, error) {
	return s.apply("update contact channels", func() (*settings.UserSettings, error) {
		return s.repo.UpdateContactChannels(ctx, req)
	})
}

func (s *service) UpdateAlertSettings(ctx context.Context, req settings.AlertSettings) (*settings.UserSettings, error) {
	return s.apply("update alert settings", func() (*settings.UserSettings, error) {
		return s.repo.UpdateAlertSettings(ctx, req)
	})
}

// UpdatePreferences replaces the subscribed job categories
func (s *service) UpdatePreferences(ctx context.Context, preferences []string) (*settings.UserSettings, error) {
	for _, p := range preferences {
		if !slices.Contains(settings.ValidCategories, p) {
			return nil, fmt.Errorf("%w: %s", settings.ErrInvalidCategory, p)
		}
	}
	return s.apply("update preferences", func() (*settings.UserSettings, error) {
		return s.repo.UpdatePreferences(ctx, preferences)
	})
}

// DisconnectAccount unlinks a login provider and refreshes the settings
func (s *service) DisconnectAccount(ctx context.Context, provider string) error {
	if !slices.Contains(providers, provider) {
		return settings.ErrInvalidProvider
	}
	if err := s.repo.DisconnectAccount(ctx, provider); err != nil {
		log.Printf("[SettingsService] disconnect %s failed: %v", provider, err)
		return err
	}
	if _, err := s.Get(ctx); err != nil {
		log.Printf("[SettingsService] refresh after disconnect failed: %v", err)
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*settings.UserStats, error) {
	return s.repo.Stats(ctx)
}

func (s *service) apply(op string, fn func() (*settings.UserSettings, error)) (*settings.UserSettings, error) {
	us, err := fn()
	if err != nil {
		log.Printf("[SettingsService] %s failed: %v", op, err)
		return nil, err
	}
	s.set(us)
	return us, nil
}

func (s *service) set(us *settings.UserSettings) {
	if us == nil {
		return
	}
	cp := *us
	s.mu.Lock()
	s.current = &cp
	s.mu.Unlock()
}
