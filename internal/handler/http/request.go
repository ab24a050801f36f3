package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/validator"
)

// decodeRequest decodes and validates a JSON body. It writes the error
// response itself and reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, name string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Error(name+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	if err := validator.Struct(v); err != nil {
		slog.Error(name+" validate error", "error", err)
		response.HandleError(w, err)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getOptionalBoolQueryParam returns nil when the parameter is absent
func getOptionalBoolQueryParam(r *http.Request, key string) *bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	b := val == "true" || val == "1"
	return &b
}

// currentUserID returns the signed-in user's id, or "" when signed out
func currentUserID(sessionService session.Service) string {
	user := sessionService.CurrentUser()
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}
