// Package file stores agent state as JSON documents on local disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/storage"
)

const sessionFile = "session.json"

func readJSON(ctx context.Context, fs storage.FileStorage, path string, v any) error {
	rc, err := fs.Read(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(ctx context.Context, fs storage.FileStorage, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fs.Write(ctx, path, bytes.NewReader(b))
}

type sessionRepository struct {
	fs storage.FileStorage
	mu sync.Mutex
}

// NewSessionRepository creates a session store backed by a JSON file
func NewSessionRepository(fs storage.FileStorage) session.Repository {
	return &sessionRepository{fs: fs}
}

func (r *sessionRepository) Load(ctx context.Context) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s session.Session
	if err := readJSON(ctx, r.fs, sessionFile, &s); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSON(ctx, r.fs, sessionFile, s)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fs.Delete(ctx, sessionFile)
}

type subscriptionRepository struct {
	fs storage.FileStorage
	mu sync.Mutex
}

// NewSubscriptionRepository creates a push subscription store with one JSON
// file per installation
func NewSubscriptionRepository(fs storage.FileStorage) push.Repository {
	return &subscriptionRepository{fs: fs}
}

func subscriptionFile(installationID string) string {
	return "subscriptions/" + installationID + ".json"
}

func (r *subscriptionRepository) Get(ctx context.Context, installationID string) (*push.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sub push.Subscription
	if err := readJSON(ctx, r.fs, subscriptionFile(installationID), &sub); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, push.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Save(ctx context.Context, sub *push.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSON(ctx, r.fs, subscriptionFile(sub.InstallationID), sub)
}

func (r *subscriptionRepository) Delete(ctx context.Context, installationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := subscriptionFile(installationID)
	ok, err := r.fs.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return push.ErrSubscriptionNotFound
	}
	return r.fs.Delete(ctx, path)
}
