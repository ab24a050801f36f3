package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
)

// AgentJobs keeps the subscription and session in step with the backend
type AgentJobs struct {
	pushManager    push.Manager
	sessionService session.Service
}

func NewAgentJobs(pushManager push.Manager, sessionService session.Service) *AgentJobs {
	return &AgentJobs{
		pushManager:    pushManager,
		sessionService: sessionService,
	}
}

// RegisterJobs registers the agent's cron jobs
func (j *AgentJobs) RegisterJobs(scheduler *Scheduler, subscriptionInterval, sessionInterval time.Duration) {
	scheduler.AddJob("push_subscription_sync", subscriptionInterval, j.SyncPushSubscription)
	scheduler.AddJob("session_expiry_check", sessionInterval, j.CheckSessionExpiry)
}

// SyncPushSubscription re-registers an existing subscription so the backend
// mirror survives its own cleanups. Nothing happens when signed out or unsubscribed.
func (j *AgentJobs) SyncPushSubscription(ctx context.Context) error {
	if !j.pushManager.IsSupported() || !j.sessionService.IsAuthenticated() {
		return nil
	}
	if j.sessionService.CurrentUser() == nil {
		return nil
	}

	_, err := j.pushManager.RefreshSubscription(ctx)
	if errors.Is(err, push.ErrSubscriptionNotFound) {
		return nil
	}
	return err
}

// CheckSessionExpiry signs out once the session token has expired
func (j *AgentJobs) CheckSessionExpiry(ctx context.Context) error {
	sess := j.sessionService.Current()
	if sess == nil || !sess.Expired(time.Now()) {
		return nil
	}
	log.Printf("[CronJobs] Session expired at %s, signing out", sess.ExpiresAt.Format(time.RFC3339))
	return j.sessionService.Clear(ctx)
}
