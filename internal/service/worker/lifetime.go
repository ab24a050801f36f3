package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
)

// Lifetime lets an event handler extend the life of its event until
// asynchronous side effects finish. Work registered with WaitUntil receives
// a context that is cancelled when the handling deadline passes.
type Lifetime struct {
	ctx  context.Context
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

func newLifetime(ctx context.Context) *Lifetime {
	return &Lifetime{ctx: ctx}
}

// WaitUntil keeps the event pending until fn returns
func (l *Lifetime) WaitUntil(fn func(ctx context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := fn(l.ctx); err != nil {
			l.mu.Lock()
			l.errs = append(l.errs, err)
			l.mu.Unlock()
		}
	}()
}

func (l *Lifetime) settle() error {
	l.wg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.errs...)
}

// Task is the handle the host awaits before it may reclaim the runtime
type Task struct {
	Event worker.EventType
	done  chan struct{}
	err   error
}

func newTask(t worker.EventType) *Task {
	return &Task{Event: t, done: make(chan struct{})}
}

func (t *Task) complete(err error) {
	t.err = err
	close(t.done)
}

// Done is closed once every extended-lifetime function has returned
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the joined handler errors. Only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task settles or ctx ends
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
