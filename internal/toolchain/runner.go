package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// ErrTimeout is returned (wrapped) when a command exceeds its timeout.
var ErrTimeout = errors.New("command timed out")

// Command describes a single external program invocation.
type Command struct {
	Tool    string            // logical tool name used in logs and errors
	Path    string            // resolved executable
	Args    []string          // arguments after the executable
	Env     map[string]string // added on top of the process environment
	Dir     string            // working directory; empty means the current one
	Timeout time.Duration     // zero means no timeout
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// EnvList returns Env as sorted KEY=VALUE pairs.
func (c Command) EnvList() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Env[k])
	}
	return out
}

// Result carries the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Output returns stdout followed by stderr, trimmed.
func (r Result) Output() string {
	return strings.TrimSpace(string(r.Stdout) + "\n" + string(r.Stderr))
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// Runner runs external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec, capturing stdout and stderr.
type ExecRunner struct{}

// Run executes cmd and waits for it. A non-zero exit yields *ExitError, an
// expired timeout yields an error wrapping ErrTimeout. The Result is populated
// in both cases.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.EnvList()...)
	// Children that inherit the pipes must not keep Wait blocked after a kill.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s: %s", ErrTimeout, c.Timeout, c.String())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExitError{Command: c.String(), Code: exitErr.ExitCode()}
	}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", c.Tool, err)
	}
	return res, nil
}
