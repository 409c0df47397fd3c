package scheduler

import (
	"context"
	stderrors "errors"
)

// Handle tracks one component's task. It completes exactly once.
type Handle struct {
	component string
	done      chan struct{}
	err       error
	submitted bool
}

func newHandle(component string) *Handle {
	return &Handle{component: component, done: make(chan struct{})}
}

func (h *Handle) resolve(err error, submitted bool) {
	h.err = err
	h.submitted = submitted
	close(h.done)
}

// Component returns the component name.
func (h *Handle) Component() string { return h.component }

// Done is closed when the handle completes.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the handle completes or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task's error once the handle completed, nil before.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Submitted reports whether the task ran on the pool.
func (h *Handle) Submitted() bool {
	select {
	case <-h.done:
		return h.submitted
	default:
		return false
	}
}

// Skipped reports whether the task was never submitted because a dependency failed.
func (h *Handle) Skipped() bool {
	return !h.Submitted() && stderrors.Is(h.Err(), ErrDependencyFailed)
}
