package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/settings"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	UpdateContactChannels(w http.ResponseWriter, r *http.Request)
	UpdateAlertSettings(w http.ResponseWriter, r *http.Request)
	UpdatePreferences(w http.ResponseWriter, r *http.Request)
	DisconnectAccount(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.Service
}

func NewSettingsHandler(settingsService settings.Service) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	us, err := h.settingsService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, us)
}

func (h *settingsHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.settingsService.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

func (h *settingsHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req settings.ProfileUpdate
	if !decodeRequest(w, r, "UpdateProfile", &req) {
		return
	}

	us, err := h.settingsService.UpdateProfile(r.Context(), req)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated", us)
}

func (h *settingsHandlerImpl) UpdateContactChannels(w http.ResponseWriter, r *http.Request) {
	var req settings.ContactChannels
	if !decodeRequest(w, r, "UpdateContactChannels", &req) {
		return
	}

	us, err := h.settingsService.UpdateContactChannels(r.Context(), req)
	if err != nil {
		slog.Error("UpdateContactChannels service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Contact channels updated", us)
}

func (h *settingsHandlerImpl) UpdateAlertSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.AlertSettings
	if !decodeRequest(w, r, "UpdateAlertSettings", &req) {
		return
	}

	us, err := h.settingsService.UpdateAlertSettings(r.Context(), req)
	if err != nil {
		slog.Error("UpdateAlertSettings service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Alert settings updated", us)
}

func (h *settingsHandlerImpl) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req settings.PreferencesUpdate
	if !decodeRequest(w, r, "UpdatePreferences", &req) {
		return
	}

	us, err := h.settingsService.UpdatePreferences(r.Context(), req.Preferences)
	if err != nil {
		slog.Error("UpdatePreferences service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Preferences updated", us)
}

func (h *settingsHandlerImpl) DisconnectAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsService.DisconnectAccount(r.Context(), chi.URLParam(r, "provider")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Account disconnected", h.settingsService.Current())
}
