package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type subscriptionRepository struct {
	db *database.DB
}

// NewSubscriptionRepository creates a new push subscription repository
func NewSubscriptionRepository(db *database.DB) push.Repository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Get(ctx context.Context, installationID string) (*push.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	var (
		sub      push.Subscription
		vapidKey *string
	)
	err := q.QueryRow(ctx, `
		SELECT installation_id, user_id, endpoint, p256dh_key, auth_key, private_key, vapid_key, created_at, updated_at
		FROM push_subscriptions
		WHERE installation_id = $1
	`, installationID).Scan(
		&sub.InstallationID,
		&sub.UserID,
		&sub.Endpoint,
		&sub.Keys.P256dh,
		&sub.Keys.Auth,
		&sub.PrivateKey,
		&vapidKey,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, push.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get push subscription: %w", err)
	}

	if vapidKey != nil {
		sub.VAPIDKey = *vapidKey
	}
	return &sub, nil
}

// Save inserts or replaces the installation's subscription
func (r *subscriptionRepository) Save(ctx context.Context, sub *push.Subscription) error {
	q := GetQuerier(ctx, r.db)

	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO push_subscriptions
			(installation_id, user_id, endpoint, p256dh_key, auth_key, private_key, vapid_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (installation_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			endpoint = EXCLUDED.endpoint,
			p256dh_key = EXCLUDED.p256dh_key,
			auth_key = EXCLUDED.auth_key,
			private_key = EXCLUDED.private_key,
			vapid_key = EXCLUDED.vapid_key,
			updated_at = EXCLUDED.updated_at
	`,
		sub.InstallationID,
		sub.UserID,
		sub.Endpoint,
		sub.Keys.P256dh,
		sub.Keys.Auth,
		sub.PrivateKey,
		sub.VAPIDKey,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, installationID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM push_subscriptions WHERE installation_id = $1`, installationID)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return push.ErrSubscriptionNotFound
	}
	return nil
}
