package push

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
)

const (
	ToastEnabled       = "Push notifications enabled!"
	ToastDisabled      = "Push notifications disabled"
	ToastEnableFailed  = "Failed to enable push notifications"
	ToastUpdateFailed  = "Failed to update push notifications"
	defaultTestTimeout = 10 * time.Second
)

// Toggle is the enable/disable control rendered in settings. The subscribed
// state it reports only changes after the manager confirmed the operation.
type Toggle struct {
	manager   push.Manager
	testDelay time.Duration
	afterFunc func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	status push.Status
}

// NewToggle creates a toggle. testDelay is the pause before the confirmation
// notification after a successful subscribe; default: 1 second.
func NewToggle(manager push.Manager, testDelay time.Duration) *Toggle {
	if testDelay == 0 {
		testDelay = time.Second
	}
	return &Toggle{
		manager:   manager,
		testDelay: testDelay,
		afterFunc: time.AfterFunc,
		status:    push.Status{Permission: manager.Permission()},
	}
}

// Refresh re-reads support and subscription state from the manager
func (t *Toggle) Refresh(ctx context.Context) (push.Status, error) {
	supported := t.manager.IsSupported()
	subscribed := false
	if supported {
		var err error
		subscribed, err = t.manager.IsSubscribed(ctx)
		if err != nil {
			return t.Status(), err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Supported = supported
	t.status.Subscribed = subscribed
	t.status.Permission = t.manager.Permission()
	return t.status, nil
}

// Status returns the last confirmed state
func (t *Toggle) Status() push.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Toggle flips the subscription for the user. Only one toggle runs at a time.
func (t *Toggle) Toggle(ctx context.Context, userID string) (push.ToggleResult, error) {
	if userID == "" {
		return push.ToggleResult{Status: t.Status()}, push.ErrNotLoggedIn
	}

	t.mu.Lock()
	if t.status.Enabling {
		status := t.status
		t.mu.Unlock()
		return push.ToggleResult{Status: status}, push.ErrToggleInProgress
	}
	if !t.status.Supported {
		status := t.status
		t.mu.Unlock()
		return push.ToggleResult{Status: status}, push.ErrNotSupported
	}
	t.status.Enabling = true
	t.mu.Unlock()

	// Subscriptions also change outside the toggle, so branch on the
	// manager's state rather than the last rendered one.
	subscribed, err := t.manager.IsSubscribed(ctx)
	if err != nil {
		t.mu.Lock()
		t.status.Enabling = false
		status := t.status
		t.mu.Unlock()
		return push.ToggleResult{Status: status}, err
	}
	t.mu.Lock()
	t.status.Subscribed = subscribed
	t.mu.Unlock()

	var toast *push.Toast
	if subscribed {
		toast = t.disable(ctx, userID)
	} else {
		toast = t.enable(ctx, userID)
	}

	t.mu.Lock()
	t.status.Enabling = false
	t.status.Permission = t.manager.Permission()
	status := t.status
	t.mu.Unlock()

	return push.ToggleResult{Status: status, Toast: toast}, nil
}

func (t *Toggle) enable(ctx context.Context, userID string) *push.Toast {
	sub, err := t.manager.SubscribeToPush(ctx, userID)
	if err != nil || sub == nil {
		log.Printf("[PushToggle] Enable failed for user %s: %v", userID, err)
		return &push.Toast{Level: push.ToastError, Message: ToastEnableFailed}
	}

	t.mu.Lock()
	t.status.Subscribed = true
	t.mu.Unlock()

	t.afterFunc(t.testDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
		defer cancel()
		if err := t.manager.TestNotification(ctx); err != nil {
			log.Printf("[PushToggle] Test notification failed: %v", err)
		}
	})
	return &push.Toast{Level: push.ToastSuccess, Message: ToastEnabled}
}

func (t *Toggle) disable(ctx context.Context, userID string) *push.Toast {
	ok, err := t.manager.Unsubscribe(ctx, userID)
	if err != nil || !ok {
		log.Printf("[PushToggle] Disable failed for user %s: %v", userID, err)
		return &push.Toast{Level: push.ToastError, Message: ToastUpdateFailed}
	}

	t.mu.Lock()
	t.status.Subscribed = false
	t.mu.Unlock()
	return &push.Toast{Level: push.ToastSuccess, Message: ToastDisabled}
}
