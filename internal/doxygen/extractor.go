package doxygen

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// Environment variables read by the extraction configuration file.
const (
	EnvProjectNumber   = "PROJECT_NUMBER"
	EnvClientName      = "CLIENT_NAME"
	EnvInput           = "INPUT"
	EnvOutputDirectory = "OUTPUT_DIRECTORY"
	EnvTagFiles        = "TAGFILES"
	EnvPredefined      = "PREDEFINED"
	EnvConfigDir       = "DOXYGEN_CONFIG_DIR"
)

// tagFileSeparator continues the TAGFILES value over several lines of the
// configuration file.
const tagFileSeparator = " \\\n                         "

// Options configures an Extractor.
type Options struct {
	Runner      toolchain.Runner
	Doxygen     string
	Layout      layout.Layout
	Catalog     *component.Catalog
	SDKVersion  string
	MacroPrefix string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Extractor runs the extraction tool for single components.
type Extractor struct {
	opts    Options
	version string
	deps    depgraph.Map
	logger  *slog.Logger
}

// NewExtractor checks the tool version and the configuration file.
func NewExtractor(ctx context.Context, opts Options) (*Extractor, error) {
	if opts.Doxygen == "" {
		return nil, errors.ToolMissingError("extraction tool executable is missing").
			WithContext("tool", toolchain.ToolDoxygen).Build()
	}
	version, err := CheckVersion(ctx, opts.Runner, opts.Doxygen)
	if err != nil {
		return nil, err
	}
	cfgFile := opts.Layout.DoxygenConfigFile()
	if _, err := os.Stat(cfgFile); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "extraction configuration file not found").
			Fatal().WithContext("path", cfgFile).Build()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Extraction tool ready", logfields.Tool(toolchain.ToolDoxygen), slog.String("version", version))
	return &Extractor{opts: opts, version: version, deps: depgraph.Map{}, logger: logger}, nil
}

// ToolVersion returns the version reported by the extraction tool.
func (e *Extractor) ToolVersion() string { return e.version }

// WithDependencies returns a copy that resolves tag files through deps.
func (e *Extractor) WithDependencies(deps depgraph.Map) *Extractor {
	cp := *e
	cp.deps = deps
	return &cp
}

// TagFiles joins the output locations of deps, relative to the SDK root.
func TagFiles(catalog *component.Catalog, deps []string) string {
	paths := make([]string, len(deps))
	for i, d := range deps {
		paths[i] = catalog.Lookup(d).DocDir
	}
	return strings.Join(paths, tagFileSeparator)
}

// Environment returns the variables passed to the extraction tool for name.
func (e *Extractor) Environment(name string) map[string]string {
	comp := e.opts.Catalog.Lookup(name)
	return map[string]string{
		EnvProjectNumber:   e.opts.SDKVersion,
		EnvClientName:      comp.Name,
		EnvInput:           comp.SourceDir,
		EnvOutputDirectory: comp.DocDir,
		EnvTagFiles:        TagFiles(e.opts.Catalog, e.deps.Dependencies(name)),
		EnvPredefined:      component.ExportMacro(comp.Name, e.opts.MacroPrefix),
		EnvConfigDir:       e.opts.Layout.DoxygenConfigDir() + string(filepath.Separator),
	}
}

// Extract runs the extraction tool for one component. Its signature matches
// scheduler.Task. Failures are ExtractionErrors carrying the exit code.
func (e *Extractor) Extract(ctx context.Context, name string) error {
	comp := e.opts.Catalog.Lookup(name)
	out := comp.DocPath(e.opts.Layout.Root)
	if err := os.MkdirAll(out, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryExtraction, "failed to create extraction output").
			WithContext("component", name).WithContext("path", out).Build()
	}

	cmd := toolchain.Command{
		Tool:    toolchain.ToolDoxygen,
		Path:    e.opts.Doxygen,
		Args:    []string{e.opts.Layout.DoxygenConfigFile()},
		Env:     e.Environment(name),
		Dir:     e.opts.Layout.Root,
		Timeout: e.opts.Timeout,
	}

	e.logger.Debug("Extracting component", logfields.Component(name), logfields.Group(string(comp.Group)))
	res, err := e.opts.Runner.Run(ctx, cmd)
	if err != nil {
		b := errors.ExtractionError("extraction failed").WithCause(err).
			WithContext("component", name).WithContext("exit_code", res.ExitCode)
		if stderrors.Is(err, toolchain.ErrTimeout) {
			b = b.WithContext("timeout", e.opts.Timeout.String())
		}
		e.logger.Error("Extraction failed",
			logfields.Component(name),
			logfields.ExitCode(res.ExitCode),
			logfields.Error(err),
			slog.String("output", res.Output()))
		return b.Build()
	}
	e.logger.Info("Extracted component",
		logfields.Component(name), logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return nil
}
