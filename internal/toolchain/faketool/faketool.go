// Package faketool provides an in-memory toolchain.Runner for tests.
package faketool

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// Handler produces the outcome of one fake invocation.
type Handler func(ctx context.Context, cmd toolchain.Command) (toolchain.Result, error)

// Runner dispatches commands to handlers registered per tool name and records
// every call. Unregistered tools succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []toolchain.Command
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle registers h for the tool name and returns the runner for chaining.
func (r *Runner) Handle(tool string, h Handler) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tool] = h
	return r
}

// Run implements toolchain.Runner.
func (r *Runner) Run(ctx context.Context, cmd toolchain.Command) (toolchain.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	h := r.handlers[cmd.Tool]
	r.mu.Unlock()

	if h == nil {
		return toolchain.Result{}, nil
	}
	return h(ctx, cmd)
}

// Calls returns the recorded invocations of tool, or all calls when tool is empty.
func (r *Runner) Calls(tool string) []toolchain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]toolchain.Command, 0, len(r.calls))
	for _, c := range r.calls {
		if tool == "" || c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}

// Stdout returns a handler that succeeds with the given output.
func Stdout(out string) Handler {
	return func(context.Context, toolchain.Command) (toolchain.Result, error) {
		return toolchain.Result{Stdout: []byte(out)}, nil
	}
}

// Exit returns a handler that fails with the given exit code and stderr.
func Exit(code int, stderr string) Handler {
	return func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		return toolchain.Result{Stderr: []byte(stderr), ExitCode: code},
			&toolchain.ExitError{Command: cmd.String(), Code: code}
	}
}
