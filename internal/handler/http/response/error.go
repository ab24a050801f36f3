package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/job"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/settings"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/apiclient"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/validator"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/webpush"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Session and control token errors
	case errors.Is(err, session.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, push.ErrNotLoggedIn):
		Unauthorized(w, err.Error())
	case errors.Is(err, jwt.ErrTokenRevoked):
		Unauthorized(w, "Control token revoked")
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid control token")
	case errors.Is(err, session.ErrSessionNotFound):
		NotFound(w, "Session not found")

	// Push errors
	case errors.Is(err, push.ErrPermissionDenied):
		Forbidden(w, "Notification permission denied")
	case errors.Is(err, push.ErrNotSupported):
		BadRequest(w, "Push notifications are not supported", nil)
	case errors.Is(err, push.ErrToggleInProgress):
		Conflict(w, "Push toggle already in progress")
	case errors.Is(err, push.ErrSubscriptionNotFound):
		NotFound(w, "Push subscription not found")
	case errors.Is(err, push.ErrNoActiveSubscription):
		NotFound(w, "No active subscriptions")
	case errors.Is(err, webpush.ErrInvalidHeader), errors.Is(err, webpush.ErrDecrypt):
		BadRequest(w, "Push message could not be decrypted", nil)

	// Notification errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidAction):
		BadRequest(w, "Invalid notification action", nil)

	// Worker errors
	case errors.Is(err, worker.ErrClientNotFound):
		NotFound(w, "Window not found")
	case errors.Is(err, worker.ErrRuntimeStopped), errors.Is(err, worker.ErrQueueFull):
		ServiceUnavailable(w, err.Error())

	// Jobs and settings errors
	case errors.Is(err, job.ErrInvalidTimeRange):
		BadRequest(w, "Invalid time range", nil)
	case errors.Is(err, settings.ErrInvalidCategory):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, settings.ErrInvalidProvider):
		BadRequest(w, "Invalid account provider", nil)

	case errors.Is(err, apiclient.ErrNotFound):
		NotFound(w, "Resource not found")
	case errors.Is(err, context.DeadlineExceeded):
		GatewayTimeout(w, "Request timed out")

	default:
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			BadGateway(w, apiErr.Error())
			return
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}
