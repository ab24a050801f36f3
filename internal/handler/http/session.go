package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/oauth"
	"github.com/go-chi/chi/v5"
)

type SessionHandler interface {
	Callback(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Onboarding(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)

	// Social login
	OAuthLogin(w http.ResponseWriter, r *http.Request)
	OAuthCallback(w http.ResponseWriter, r *http.Request)
}

// SessionResponse describes the application session without its token
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	ExpiresAt     *string       `json:"expires_at,omitempty"`
}

type sessionHandlerImpl struct {
	sessionService session.Service
	loginService   oauth.LoginService
}

func NewSessionHandler(sessionService session.Service, loginService oauth.LoginService) SessionHandler {
	return &sessionHandlerImpl{
		sessionService: sessionService,
		loginService:   loginService,
	}
}

// Callback completes the OAuth redirect by adopting the handed-back token
func (h *sessionHandlerImpl) Callback(w http.ResponseWriter, r *http.Request) {
	var req session.CallbackRequest
	if !decodeRequest(w, r, "Callback", &req) {
		return
	}

	user, err := h.sessionService.HandleCallback(r.Context(), req.Token)
	if err != nil {
		slog.Error("Callback service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Session established", "user_id", user.ID)
	response.SuccessWithMessage(w, "Signed in", user)
}

func (h *sessionHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if !decodeRequest(w, r, "Login", &req) {
		return
	}

	user, err := h.sessionService.Login(r.Context(), req)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Signed in", user)
}

func (h *sessionHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req session.RegisterRequest
	if !decodeRequest(w, r, "Register", &req) {
		return
	}

	user, err := h.sessionService.Register(r.Context(), req)
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Account created", user)
}

func (h *sessionHandlerImpl) Onboarding(w http.ResponseWriter, r *http.Request) {
	var req session.OnboardingRequest
	if !decodeRequest(w, r, "Onboarding", &req) {
		return
	}

	if err := h.sessionService.Onboarding(r.Context(), req); err != nil {
		slog.Error("Onboarding service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Onboarding completed", h.sessionService.CurrentUser())
}

func (h *sessionHandlerImpl) Current(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{Authenticated: h.sessionService.IsAuthenticated()}
	if sess := h.sessionService.Current(); sess != nil {
		resp.User = sess.User
		if !sess.ExpiresAt.IsZero() {
			exp := sess.ExpiresAt.UTC().Format(time.RFC3339)
			resp.ExpiresAt = &exp
		}
	}
	response.Success(w, resp)
}

func (h *sessionHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.Clear(r.Context()); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Signed out", nil)
}

// OAuthLogin returns the backend URL that starts a provider login
func (h *sessionHandlerImpl) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	loginURL, err := h.loginService.LoginURL(chi.URLParam(r, "provider"))
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	response.Success(w, map[string]string{"url": loginURL})
}

// OAuthCallback is the redirect target of the backend login. It adopts the
// token and sends the browser on to the application.
func (h *sessionHandlerImpl) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	cb, err := h.loginService.ParseCallback(r.URL.Query())
	if err != nil {
		slog.Warn("OAuthCallback rejected", "error", err)
		http.Redirect(w, r, h.loginService.ErrorURL(err), http.StatusFound)
		return
	}

	if _, err := h.sessionService.HandleCallback(r.Context(), cb.Token); err != nil {
		slog.Error("OAuthCallback service error", "error", err)
		http.Redirect(w, r, h.loginService.ErrorURL(oauth.ErrCallbackFailed), http.StatusFound)
		return
	}

	http.Redirect(w, r, h.loginService.LandingURL(cb), http.StatusFound)
}
