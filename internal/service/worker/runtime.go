package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
)

// Config holds worker runtime configuration
type Config struct {
	AppURL        string        // resolves relative notification URLs
	TagPerJob     bool          // derive tags from job ids
	HandleTimeout time.Duration // default: 30 seconds
	QueueSize     int           // default: 64
}

type dispatch struct {
	event worker.Event
	task  *Task
}

// Runtime runs worker event handlers one at a time on a single loop.
// Work a handler extends with WaitUntil runs concurrently with later events.
type Runtime struct {
	config       Config
	registration notification.Registration
	clients      worker.Clients
	logger       *slog.Logger
	metrics      *metrics.Metrics
	appURL       *url.URL

	events   chan dispatch
	stopCh   chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu      sync.Mutex
	state   worker.State
	running bool
}

// New creates a runtime in the parsed state
func New(cfg Config, registration notification.Registration, clients worker.Clients, logger *slog.Logger, m *metrics.Metrics) (*Runtime, error) {
	if cfg.HandleTimeout == 0 {
		cfg.HandleTimeout = 30 * time.Second
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}

	var appURL *url.URL
	if cfg.AppURL != "" {
		u, err := url.Parse(cfg.AppURL)
		if err != nil {
			return nil, fmt.Errorf("invalid app url: %w", err)
		}
		appURL = u
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	return &Runtime{
		config:       cfg,
		registration: registration,
		clients:      clients,
		logger:       logger,
		metrics:      m,
		appURL:       appURL,
		events:       make(chan dispatch, cfg.QueueSize),
		stopCh:       make(chan struct{}),
		loopDone:     make(chan struct{}),
		rootCtx:      rootCtx,
		rootCancel:   rootCancel,
		state:        worker.StateParsed,
	}, nil
}

// Start runs the event loop, then installs and activates the worker.
// It returns once activation has settled.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running || r.state == worker.StateStopped {
		r.mu.Unlock()
		return fmt.Errorf("worker runtime already started")
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()

	install, err := r.Dispatch(worker.InstallEvent{})
	if err != nil {
		return err
	}
	if err := install.Wait(ctx); err != nil {
		return fmt.Errorf("install: %w", err)
	}

	activate, err := r.Dispatch(worker.ActivateEvent{})
	if err != nil {
		return err
	}
	if err := activate.Wait(ctx); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	return nil
}

// Dispatch queues an event and returns the task tracking its lifetime
func (r *Runtime) Dispatch(ev worker.Event) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil, worker.ErrRuntimeStopped
	}

	d := dispatch{event: ev, task: newTask(ev.Type())}
	r.inflight.Add(1)
	select {
	case r.events <- d:
		return d.task, nil
	default:
		r.inflight.Done()
		return nil, worker.ErrQueueFull
	}
}

// State returns the lifecycle state
func (r *Runtime) State() worker.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close stops accepting events and waits for every dispatched event to
// settle. When ctx ends first, outstanding work is cancelled.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	<-r.loopDone

	settled := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(settled)
	}()

	var err error
	select {
	case <-settled:
	case <-ctx.Done():
		err = ctx.Err()
	}
	r.rootCancel()

	r.mu.Lock()
	r.state = worker.StateStopped
	r.mu.Unlock()
	r.logger.Info("Worker runtime stopped")
	return err
}

func (r *Runtime) loop() {
	defer close(r.loopDone)

	for {
		select {
		case d := <-r.events:
			r.run(d)
		case <-r.stopCh:
			// Nothing can be queued once stopCh is closed; drain what is left.
			for {
				select {
				case d := <-r.events:
					r.run(d)
				default:
					return
				}
			}
		}
	}
}

func (r *Runtime) run(d dispatch) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.rootCtx, r.config.HandleTimeout)
	lt := newLifetime(ctx)

	handleErr := r.handle(lt, d.event)

	go func() {
		defer r.inflight.Done()
		defer cancel()

		err := errors.Join(handleErr, lt.settle())
		r.afterSettle(d.event, err)

		eventType := d.event.Type().String()
		status := "ok"
		if err != nil {
			status = "error"
			r.logger.Error("Worker event failed", "type", eventType, "error", err)
		}
		r.metrics.WorkerEvents.WithLabelValues(eventType, status).Inc()
		r.metrics.WorkerLatency.WithLabelValues(eventType).Observe(time.Since(start).Seconds())

		d.task.complete(err)
	}()
}

func (r *Runtime) handle(lt *Lifetime, ev worker.Event) error {
	switch e := ev.(type) {
	case worker.InstallEvent:
		r.onInstall()
	case worker.ActivateEvent:
		r.onActivate(lt)
	case worker.PushEvent:
		r.onPush(lt, e)
	case worker.NotificationClickEvent:
		return r.onNotificationClick(lt, e)
	default:
		return fmt.Errorf("%w: %T", worker.ErrUnknownEvent, ev)
	}
	return nil
}

func (r *Runtime) afterSettle(ev worker.Event, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type() {
	case worker.EventInstall:
		r.state = worker.StateInstalled
	case worker.EventActivate:
		if err == nil {
			r.state = worker.StateActivated
		}
	}
}

// onInstall skips the waiting phase; nothing is pre-cached.
func (r *Runtime) onInstall() {
	r.mu.Lock()
	r.state = worker.StateInstalling
	r.mu.Unlock()
	r.logger.Info("Worker installed, skipping waiting")
}

// onActivate claims every open client so the update applies without a reload.
func (r *Runtime) onActivate(lt *Lifetime) {
	r.mu.Lock()
	r.state = worker.StateActivating
	r.mu.Unlock()

	lt.WaitUntil(func(ctx context.Context) error {
		if err := r.clients.Claim(ctx); err != nil {
			return fmt.Errorf("claim clients: %w", err)
		}
		r.logger.Info("Worker activated")
		return nil
	})
}

// onPush shows exactly one notification. A payload that cannot be decoded
// falls back to the default content instead of failing the event.
func (r *Runtime) onPush(lt *Lifetime, e worker.PushEvent) {
	payload, err := notification.DecodePayload(e.Data)
	switch {
	case err != nil:
		r.metrics.PushPayloads.WithLabelValues("invalid").Inc()
		r.logger.Warn("Push payload could not be decoded, using defaults", "error", err)
	case len(e.Data) == 0:
		r.metrics.PushPayloads.WithLabelValues("empty").Inc()
	default:
		r.metrics.PushPayloads.WithLabelValues("decoded").Inc()
	}
	r.logger.Debug("Push received", "title", payload.Title, "tag", payload.Tag)

	opts := payload.Options(r.config.TagPerJob)
	lt.WaitUntil(func(ctx context.Context) error {
		_, err := r.registration.ShowNotification(ctx, payload.Title, opts)
		return err
	})
}

func (r *Runtime) onNotificationClick(lt *Lifetime, e worker.NotificationClickEvent) error {
	if e.Notification == nil {
		return notification.ErrNotificationNotFound
	}
	e.Notification.Close()

	label := string(e.Action)
	if label == "" {
		label = "none"
	}
	r.metrics.NotificationClicks.WithLabelValues(label).Inc()

	switch e.Action {
	case notification.ActionView, notification.ActionNone:
		target := r.resolve(e.Notification.Options.Data.URL)
		lt.WaitUntil(func(ctx context.Context) error {
			return r.focusOrOpen(ctx, target)
		})
	}
	return nil
}

// focusOrOpen focuses the first window showing exactly target, or opens one.
// It is best effort: failures are reported, never retried.
func (r *Runtime) focusOrOpen(ctx context.Context, target string) error {
	windows, err := r.clients.MatchAll(ctx, worker.MatchOptions{
		Type:                worker.ClientTypeWindow,
		IncludeUncontrolled: true,
	})
	if err != nil {
		return fmt.Errorf("match clients: %w", err)
	}

	for _, w := range windows {
		if w.URL() == target {
			if err := w.Focus(ctx); err != nil {
				return fmt.Errorf("focus window: %w", err)
			}
			r.logger.Info("Window focused", "id", w.ID(), "url", target)
			return nil
		}
	}

	if _, err := r.clients.OpenWindow(ctx, target); err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	return nil
}

func (r *Runtime) resolve(raw string) string {
	if r.appURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}
	return r.appURL.ResolveReference(ref).String()
}
