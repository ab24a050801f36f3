package session

import (
	"time"
)

// User is the backend user as returned by /api/auth/me
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Preferences    []string  `json:"preferences"`
	TelegramChatID *string   `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session is the application session: the bearer token and the user it belongs to
type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Expired reports whether the token carries an expiry that has passed
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
