// Package clients tracks the application windows the agent can route
// notification clicks to.
package clients

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Launcher opens a URL in a real browser window
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// CommandLauncher runs Command with the URL as its only argument
type CommandLauncher struct {
	Command string
}

func (l CommandLauncher) Launch(ctx context.Context, url string) error {
	return exec.CommandContext(ctx, l.Command, url).Start()
}

// WindowInfo is the serialisable view of a window
type WindowInfo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Controlled   bool      `json:"controlled"`
	Focused      bool      `json:"focused"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Window is an open application window
type Window struct {
	registry *Registry
	info     WindowInfo
}

func (w *Window) ID() string { return w.info.ID }

func (w *Window) URL() string {
	w.registry.mu.RLock()
	defer w.registry.mu.RUnlock()
	return w.info.URL
}

// Focus brings the window to the front
func (w *Window) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return w.registry.focus(w.info.ID)
}

// Registry implements worker.Clients over the windows announced by the UI
type Registry struct {
	mu       sync.RWMutex
	windows  map[string]*Window
	order    []string
	launcher Launcher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ worker.Clients = (*Registry)(nil)

// NewRegistry creates a registry. launcher may be nil for headless use.
func NewRegistry(launcher Launcher, m *metrics.Metrics, logger *slog.Logger) *Registry {
	return &Registry{
		windows:  make(map[string]*Window),
		launcher: launcher,
		metrics:  m,
		logger:   logger,
	}
}

// Register records an open window
func (r *Registry) Register(url string, controlled bool) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(url, controlled)
}

func (r *Registry) addLocked(url string, controlled bool) *Window {
	w := &Window{
		registry: r,
		info: WindowInfo{
			ID:           uuid.New().String(),
			URL:          url,
			Controlled:   controlled,
			RegisteredAt: time.Now(),
		},
	}
	r.windows[w.info.ID] = w
	r.order = append(r.order, w.info.ID)
	return w
}

// Remove forgets a closed window
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.windows[id]; !ok {
		return false
	}
	delete(r.windows, id)
	for i, wid := range r.order {
		if wid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Navigate records that a window moved to a new URL
func (r *Registry) Navigate(id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[id]
	if !ok {
		return worker.ErrClientNotFound
	}
	w.info.URL = url
	return nil
}

// List returns every known window in registration order
func (r *Registry) List() []WindowInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WindowInfo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.windows[id].info)
	}
	return out
}

// MatchAll returns windows in registration order, skipping uncontrolled ones
// unless asked to include them. The registry only tracks windows, so any
// other client type matches nothing.
func (r *Registry) MatchAll(ctx context.Context, opts worker.MatchOptions) ([]worker.WindowClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch opts.Type {
	case "", worker.ClientTypeWindow, worker.ClientTypeAll:
	default:
		return []worker.WindowClient{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]worker.WindowClient, 0, len(r.order))
	for _, id := range r.order {
		w := r.windows[id]
		if !w.info.Controlled && !opts.IncludeUncontrolled {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// OpenWindow opens a new window at url and returns it focused
func (r *Registry) OpenWindow(ctx context.Context, url string) (worker.WindowClient, error) {
	if r.launcher != nil {
		if err := r.launcher.Launch(ctx, url); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	w := r.addLocked(url, true)
	r.setFocusLocked(w.info.ID)
	r.mu.Unlock()

	r.metrics.WindowsOpened.Inc()
	r.logger.Info("Window opened", "id", w.info.ID, "url", url)
	return w, nil
}

// Claim makes every known window controlled by the running worker
func (r *Registry) Claim(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.windows {
		w.info.Controlled = true
	}
	return nil
}

func (r *Registry) focus(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.windows[id]; !ok {
		return worker.ErrClientNotFound
	}
	r.setFocusLocked(id)
	r.metrics.WindowsFocused.Inc()
	return nil
}

func (r *Registry) setFocusLocked(id string) {
	for wid, w := range r.windows {
		w.info.Focused = wid == id
	}
}
