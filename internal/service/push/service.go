package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/webpush"
)

const (
	TestNotificationTitle = "Test Notification"
	TestNotificationBody  = "Push notifications are working!"
	LoopbackTestBody      = "Delivered through this agent's push endpoint"
)

// Config holds push manager configuration
type Config struct {
	PublicURL      string // base the push service delivers to
	InstallationID string
	Permission     push.Permission // default: "default"
	Sender         push.Sender     // optional, enables the loopback test
}

type manager struct {
	config       Config
	repo         push.Repository
	gateway      push.Gateway
	registration notification.Registration

	// lifecycle serializes subscribe, re-register, unsubscribe and permission changes.
	lifecycle sync.Mutex

	mu         sync.Mutex
	permission push.Permission
	cached     *push.Subscription
	now        func() time.Time
}

// NewManager creates the push manager for one installation
func NewManager(cfg Config, repo push.Repository, gateway push.Gateway, registration notification.Registration) push.Manager {
	if cfg.Permission == "" {
		cfg.Permission = push.PermissionDefault
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return &manager{
		config:       cfg,
		repo:         repo,
		gateway:      gateway,
		registration: registration,
		permission:   cfg.Permission,
		now:          time.Now,
	}
}

// IsSupported reports whether push can work at all for this installation
func (m *manager) IsSupported() bool {
	return m.config.PublicURL != "" && m.config.InstallationID != ""
}

// IsSubscribed reports whether a local subscription exists
func (m *manager) IsSubscribed(ctx context.Context) (bool, error) {
	if !m.IsSupported() {
		return false, nil
	}
	_, err := m.Subscription(ctx)
	if errors.Is(err, push.ErrSubscriptionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Subscription returns the current subscription
func (m *manager) Subscription(ctx context.Context) (*push.Subscription, error) {
	m.mu.Lock()
	if m.cached != nil {
		sub := *m.cached
		m.mu.Unlock()
		return &sub, nil
	}
	m.mu.Unlock()

	sub, err := m.repo.Get(ctx, m.config.InstallationID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cached = sub
	m.mu.Unlock()

	out := *sub
	return &out, nil
}

// SubscribeToPush creates the installation's subscription and registers it
// with the backend. On failure nothing is persisted and the subscription is nil.
func (m *manager) SubscribeToPush(ctx context.Context, userID string) (*push.Subscription, error) {
	if !m.IsSupported() {
		return nil, push.ErrNotSupported
	}
	if userID == "" {
		return nil, push.ErrNotLoggedIn
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if err := m.requestPermission(); err != nil {
		return nil, err
	}

	existing, err := m.reregister(ctx)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, push.ErrSubscriptionNotFound):
		return nil, err
	}

	vapidKey, err := m.gateway.VAPIDPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch vapid public key: %w", err)
	}

	keys, err := webpush.GenerateKeys()
	if err != nil {
		return nil, fmt.Errorf("generate subscription keys: %w", err)
	}

	now := m.now()
	sub := &push.Subscription{
		InstallationID: m.config.InstallationID,
		UserID:         userID,
		Endpoint:       m.endpoint(),
		Keys: push.Keys{
			P256dh: keys.P256dh(),
			Auth:   keys.AuthSecret(),
		},
		PrivateKey: keys.PrivateKeyString(),
		VAPIDKey:   vapidKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// The subscription only exists locally once the backend has accepted it.
	if err := m.gateway.Subscribe(ctx, toRequest(sub)); err != nil {
		log.Printf("[PushManager] Backend rejected subscription for user %s: %v", userID, err)
		return nil, fmt.Errorf("register subscription: %w", err)
	}

	if err := m.repo.Save(ctx, sub); err != nil {
		if uerr := m.gateway.Unsubscribe(ctx); uerr != nil {
			log.Printf("[PushManager] Rollback of backend subscription failed: %v", uerr)
		}
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	m.mu.Lock()
	m.cached = sub
	m.mu.Unlock()

	log.Printf("[PushManager] Subscribed installation %s for user %s", sub.InstallationID, userID)
	out := *sub
	return &out, nil
}

// RefreshSubscription registers the existing subscription with the backend
// again. It never creates one: without a subscription it returns
// ErrSubscriptionNotFound.
func (m *manager) RefreshSubscription(ctx context.Context) (*push.Subscription, error) {
	if !m.IsSupported() {
		return nil, push.ErrNotSupported
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.reregister(ctx)
}

// reregister sends the stored subscription to the backend. Callers hold lifecycle.
func (m *manager) reregister(ctx context.Context) (*push.Subscription, error) {
	existing, err := m.Subscription(ctx)
	if errors.Is(err, push.ErrSubscriptionNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if err := m.gateway.Subscribe(ctx, toRequest(existing)); err != nil {
		log.Printf("[PushManager] Re-register existing subscription failed: %v", err)
		return nil, fmt.Errorf("register subscription: %w", err)
	}
	return existing, nil
}

// Unsubscribe removes the subscription from the backend, then locally.
// It reports false with nothing changed when either step fails.
func (m *manager) Unsubscribe(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, push.ErrNotLoggedIn
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if _, err := m.Subscription(ctx); err != nil {
		return false, err
	}

	if err := m.gateway.Unsubscribe(ctx); err != nil && !errors.Is(err, push.ErrNoActiveSubscription) {
		return false, fmt.Errorf("unregister subscription: %w", err)
	}

	if err := m.repo.Delete(ctx, m.config.InstallationID); err != nil && !errors.Is(err, push.ErrSubscriptionNotFound) {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()

	log.Printf("[PushManager] Unsubscribed installation %s for user %s", m.config.InstallationID, userID)
	return true, nil
}

// TestNotification shows a local confirmation notification
func (m *manager) TestNotification(ctx context.Context) error {
	if m.Permission() != push.PermissionGranted {
		return push.ErrPermissionDenied
	}

	opts := notification.Options{
		Body:    TestNotificationBody,
		Icon:    notification.DefaultIcon,
		Badge:   notification.DefaultBadge,
		Data:    notification.Data{URL: notification.DefaultURL},
		Tag:     "test-notification",
		Vibrate: notification.DefaultVibrate(),
	}
	_, err := m.registration.ShowNotification(ctx, TestNotificationTitle, opts)
	return err
}

// SendServerTest asks the backend to deliver a test push to this user
func (m *manager) SendServerTest(ctx context.Context) (string, error) {
	return m.gateway.SendTest(ctx)
}

// SendLoopbackTest encrypts a test payload with the subscription's public
// keys and posts it to the subscription endpoint, so delivery runs through
// the same receiver the backend uses.
func (m *manager) SendLoopbackTest(ctx context.Context) error {
	if m.config.Sender == nil || !m.IsSupported() {
		return push.ErrNotSupported
	}
	if m.Permission() != push.PermissionGranted {
		return push.ErrPermissionDenied
	}
	sub, err := m.Subscription(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(notification.Payload{
		Title: TestNotificationTitle,
		Body:  LoopbackTestBody,
		URL:   notification.DefaultURL,
		Tag:   "test-notification",
	})
	if err != nil {
		return err
	}

	if err := m.config.Sender.Send(ctx, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, payload); err != nil {
		log.Printf("[PushManager] Loopback test to %s failed: %v", sub.Endpoint, err)
		return fmt.Errorf("loopback test: %w", err)
	}
	return nil
}

func (m *manager) Permission() push.Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permission
}

// SetPermission changes the permission state. Denying destroys the local
// subscription, mirroring a browser revoking notification permission.
func (m *manager) SetPermission(ctx context.Context, p push.Permission) error {
	switch p {
	case push.PermissionDefault, push.PermissionGranted, push.PermissionDenied:
	default:
		return fmt.Errorf("unknown permission %q", p)
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	m.permission = p
	m.mu.Unlock()

	if p != push.PermissionDenied {
		return nil
	}

	err := m.repo.Delete(ctx, m.config.InstallationID)
	if err != nil && !errors.Is(err, push.ErrSubscriptionNotFound) {
		return fmt.Errorf("delete subscription: %w", err)
	}

	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
	log.Printf("[PushManager] Permission revoked, subscription destroyed")
	return nil
}

// requestPermission grants a permission that was never decided. The agent
// acts on an explicit user toggle, so a pending prompt resolves to granted.
func (m *manager) requestPermission() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.permission {
	case push.PermissionDenied:
		return push.ErrPermissionDenied
	case push.PermissionDefault:
		m.permission = push.PermissionGranted
	}
	return nil
}

func (m *manager) endpoint() string {
	return m.config.PublicURL + "/push/" + m.config.InstallationID
}

func toRequest(sub *push.Subscription) push.SubscribeRequest {
	return push.SubscribeRequest{
		Endpoint: sub.Endpoint,
		Keys:     sub.Keys,
	}
}
