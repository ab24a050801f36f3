// Package oauth drives the backend-hosted social login. The backend runs the
// provider exchange and redirects back with the session token in the query.
package oauth

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

const (
	ProviderTwitter = "twitter"
	ProviderGoogle  = "google"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrCallbackFailed  = errors.New("oauth login failed")
	ErrMissingToken    = errors.New("oauth callback carried no token")
)

// Callback is what the backend hands back after a provider login
type Callback struct {
	Token   string
	NewUser bool
}

type LoginService interface {
	// LoginURL returns the backend URL that starts the provider login.
	LoginURL(provider string) (string, error)
	// ParseCallback reads the redirect query. A "message" parameter is a failure.
	ParseCallback(query url.Values) (Callback, error)
	// LandingURL is where the user goes once the session is established.
	LandingURL(cb Callback) string
	// ErrorURL is where the user goes when the login failed.
	ErrorURL(err error) string
}

type loginServiceImpl struct {
	apiURL      string
	frontendURL string
	providers   []string
}

// NewLoginService creates a login service. providers defaults to twitter only.
func NewLoginService(apiURL, frontendURL string, providers []string) LoginService {
	if len(providers) == 0 {
		providers = []string{ProviderTwitter}
	}
	return &loginServiceImpl{
		apiURL:      strings.TrimRight(apiURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		providers:   providers,
	}
}

func (s *loginServiceImpl) LoginURL(provider string) (string, error) {
	if !slices.Contains(s.providers, provider) {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return fmt.Sprintf("%s/api/auth/%s/login", s.apiURL, url.PathEscape(provider)), nil
}

func (s *loginServiceImpl) ParseCallback(query url.Values) (Callback, error) {
	if msg := query.Get("message"); msg != "" {
		return Callback{}, fmt.Errorf("%w: %s", ErrCallbackFailed, msg)
	}
	token := query.Get("token")
	if token == "" {
		return Callback{}, ErrMissingToken
	}
	return Callback{
		Token:   token,
		NewUser: query.Get("new_user") == "true" || query.Get("new_user") == "True",
	}, nil
}

func (s *loginServiceImpl) LandingURL(cb Callback) string {
	if cb.NewUser {
		return s.frontendURL + "/onboarding"
	}
	return s.frontendURL + "/dashboard"
}

func (s *loginServiceImpl) ErrorURL(err error) string {
	return s.frontendURL + "/auth/error?message=" + url.QueryEscape(err.Error())
}
