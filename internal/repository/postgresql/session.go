package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type sessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) session.Repository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Load(ctx context.Context) (*session.Session, error) {
	q := GetQuerier(ctx, r.db)

	var (
		s         session.Session
		userData  []byte
		expiresAt *time.Time
	)
	err := q.QueryRow(ctx, `
		SELECT token, user_data, expires_at, saved_at
		FROM agent_sessions
		WHERE id = 1
	`).Scan(&s.Token, &userData, &expiresAt, &s.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if expiresAt != nil {
		s.ExpiresAt = *expiresAt
	}
	if len(userData) > 0 {
		var u session.User
		if err := json.Unmarshal(userData, &u); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
		}
		s.User = &u
	}
	return &s, nil
}

func (r *sessionRepository) Save(ctx context.Context, s *session.Session) error {
	q := GetQuerier(ctx, r.db)

	var userData []byte
	if s.User != nil {
		var err error
		userData, err = json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to marshal session user: %w", err)
		}
	}

	var expiresAt *time.Time
	if !s.ExpiresAt.IsZero() {
		expiresAt = &s.ExpiresAt
	}
	savedAt := s.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO agent_sessions (id, token, user_data, expires_at, saved_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_data = EXCLUDED.user_data,
			expires_at = EXCLUDED.expires_at,
			saved_at = EXCLUDED.saved_at
	`, s.Token, userData, expiresAt, savedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM agent_sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
