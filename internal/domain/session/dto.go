package session

// CallbackRequest carries the token handed back by the OAuth callback page
type CallbackRequest struct {
	Token string `json:"token" validate:"required"`
}

// LoginRequest represents email/password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the first registration step
type RegisterRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	Preferences []string `json:"preferences"`
}

// OnboardingRequest completes registration
type OnboardingRequest struct {
	TelegramID         *string  `json:"telegram_id"`
	Preferences        []string `json:"preferences" validate:"required,min=1"`
	AlertSpeed         string   `json:"alert_speed" validate:"required,oneof=instant 30min hourly"`
	InAppNotifications bool     `json:"in_app_notifications"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}
