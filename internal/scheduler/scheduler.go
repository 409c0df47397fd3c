// Package scheduler runs one task per component in dependency order on a
// bounded pool.
//
// Scheduling a component first schedules each of its dependencies, waits for
// all of their handles to complete, and only then takes a pool slot for its
// own task. Handles are memoized: however many dependents reference a
// component, its task is submitted at most once. A failed task never cancels
// its siblings; its dependents are resolved as skipped without being
// submitted.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
)

// ErrDependencyFailed marks a component that was not submitted because one of
// its dependencies failed or was itself skipped.
var ErrDependencyFailed = stderrors.New("dependency failed")

// Task performs the work for one component.
type Task func(ctx context.Context, component string) error

// Observer is notified when a task is submitted to the pool and when it ends.
// Implementations must be safe for concurrent use.
type Observer interface {
	OnSubmit(component string)
	OnComplete(component string, err error, duration time.Duration)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, o) }
}

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler owns the memoized handles of one run.
type Scheduler struct {
	deps      depgraph.Map
	task      Task
	workers   int
	sem       *semaphore.Weighted
	logger    *slog.Logger
	observers []Observer

	mu      sync.Mutex
	handles map[string]*Handle
	order   []string
}

// New returns a scheduler over deps with a pool of workers slots (minimum one).
func New(deps depgraph.Map, workers int, task Task, opts ...Option) *Scheduler {
	workers = max(workers, 1)
	s := &Scheduler{
		deps:    deps,
		task:    task,
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
		handles: make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int { return s.workers }

// Schedule returns the handle of component, scheduling it and its transitive
// dependencies on first use. It never blocks. The map must be acyclic; Run
// checks that before scheduling anything.
func (s *Scheduler) Schedule(ctx context.Context, component string) *Handle {
	s.mu.Lock()
	if h, ok := s.handles[component]; ok {
		s.mu.Unlock()
		return h
	}
	h := newHandle(component)
	s.handles[component] = h
	s.order = append(s.order, component)
	s.mu.Unlock()

	go s.run(ctx, h)
	return h
}

func (s *Scheduler) run(ctx context.Context, h *Handle) {
	deps := s.deps.Dependencies(h.component)
	depHandles := make([]*Handle, len(deps))
	for i, dep := range deps {
		depHandles[i] = s.Schedule(ctx, dep)
	}
	for _, dh := range depHandles {
		<-dh.Done()
	}
	for _, dh := range depHandles {
		if dh.Err() != nil {
			s.logger.Warn("Skipping component: dependency did not complete",
				logfields.Component(h.component), slog.String("dependency", dh.component))
			h.resolve(fmt.Errorf("%s: %w: %s", h.component, ErrDependencyFailed, dh.component), false)
			return
		}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		h.resolve(fmt.Errorf("%s: %w", h.component, err), false)
		return
	}
	defer s.sem.Release(1)

	for _, o := range s.observers {
		o.OnSubmit(h.component)
	}
	start := time.Now()
	err := s.task(ctx, h.component)
	elapsed := time.Since(start)
	for _, o := range s.observers {
		o.OnComplete(h.component, err, elapsed)
	}
	h.resolve(err, true)
}

// Run validates the map, schedules the given roots followed by every component
// of the map in name order, and waits for all handles. The result joins the
// error of every handle that did not succeed.
func (s *Scheduler) Run(ctx context.Context, roots ...string) error {
	if err := s.deps.Validate(); err != nil {
		return err
	}
	s.logger.Info("Scheduling components", logfields.Workers(s.workers), logfields.Count(len(s.deps)))

	for _, r := range roots {
		s.Schedule(ctx, r)
	}
	for _, c := range s.deps.Components() {
		s.Schedule(ctx, c)
	}
	return s.Wait()
}

// Wait blocks until every scheduled handle, including the ones scheduled while
// waiting, has completed, then joins their errors in scheduling order.
func (s *Scheduler) Wait() error {
	for i := 0; ; i++ {
		s.mu.Lock()
		if i >= len(s.order) {
			s.mu.Unlock()
			break
		}
		h := s.handles[s.order[i]]
		s.mu.Unlock()
		<-h.Done()
	}

	var errs []error
	for _, h := range s.Handles() {
		if err := h.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Handles returns the handles in scheduling order.
func (s *Scheduler) Handles() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Handle, len(s.order))
	for i, name := range s.order {
		out[i] = s.handles[name]
	}
	return out
}

// Handle returns the handle of component if it was scheduled.
func (s *Scheduler) Handle(component string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[component]
	return h, ok
}
