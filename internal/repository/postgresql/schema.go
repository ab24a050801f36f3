package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS agent_sessions (
		id          SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		token       TEXT NOT NULL,
		user_data   JSONB,
		expires_at  TIMESTAMPTZ,
		saved_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS push_subscriptions (
		installation_id TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		endpoint        TEXT NOT NULL,
		p256dh_key      TEXT NOT NULL,
		auth_key        TEXT NOT NULL,
		private_key     TEXT NOT NULL,
		vapid_key       TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the agent's tables when they are missing
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, stmt := range schema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
