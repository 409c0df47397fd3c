package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyComponent  = "component"
	KeyGroup      = "group"
	KeyTool       = "tool"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyExitCode   = "exit_code"
	KeyWorkers    = "workers"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Group(g string) slog.Attr        { return slog.String(KeyGroup, g) }
func Tool(t string) slog.Attr         { return slog.String(KeyTool, t) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Workers(n int) slog.Attr         { return slog.Int(KeyWorkers, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
