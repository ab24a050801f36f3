package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired admits requests carrying a valid, unrevoked control token.
// It expects jwtauth.Verifier to have run first.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeControl || !ok {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, jwt.ErrTokenRevoked)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// InstallationID returns the installation the control token was issued to
func InstallationID(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if id, ok := claims["installation_id"].(string); ok {
		return id
	}
	return ""
}
