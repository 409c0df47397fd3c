// Package commands implements the sdkdocs command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sdkdocs/internal/config"
)

// DefaultConfigFile is read when present; its absence is not an error.
const DefaultConfigFile = "sdkdocs.yaml"

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "SDKDOCS_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sdkdocs.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Generate, build and merge the API reference (default command)"`
	Graph GraphCmd `cmd:"" help:"Print the component dependency graph in build order"`
}

// AfterApply runs after flag parsing; logging is configured again once the
// configuration file is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, resolveLogLevel(c.Verbose, ""), config.LogFormatText))
	return nil
}

// loadConfig reads the configuration file. The default file is optional;
// an explicitly named one must exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.Config
	if path == DefaultConfigFile {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return config.Load(path)
}

// configureLogging installs the logger described by cfg, honouring -v and
// SDKDOCS_LOG_LEVEL, and returns it.
func (c *CLI) configureLogging(cfg *config.Config) *slog.Logger {
	logger := newLogger(os.Stderr, resolveLogLevel(c.Verbose, cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger)
	return logger
}

// resolveLogLevel applies the precedence -v > SDKDOCS_LOG_LEVEL > config.
func resolveLogLevel(verbose bool, configured config.LogLevel) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return config.NormalizeLogLevel(env).SlogLevel()
	}
	if configured != "" {
		return configured.SlogLevel()
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
