package http

import (
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/middleware"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// ControlHandler manages the control API's own tokens
type ControlHandler interface {
	StreamToken(w http.ResponseWriter, r *http.Request)
	Revoke(w http.ResponseWriter, r *http.Request)
}

type controlHandlerImpl struct {
	jwtService jwt.Service
}

func NewControlHandler(jwtService jwt.Service) ControlHandler {
	return &controlHandlerImpl{jwtService: jwtService}
}

// StreamToken issues a short-lived token for the event stream
func (h *controlHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	token, expiresIn, err := h.jwtService.GenerateStreamToken(middleware.InstallationID(r))
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, push.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Revoke invalidates the control token used for this request
func (h *controlHandlerImpl) Revoke(w http.ResponseWriter, r *http.Request) {
	h.jwtService.RevokeToken(jwtauth.TokenFromHeader(r))
	response.SuccessWithMessage(w, "Control token revoked", nil)
}
