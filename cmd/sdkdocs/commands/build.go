package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sdkdocs/internal/config"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
	"git.home.luguber.info/inful/sdkdocs/internal/pipeline"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// BuildCmd implements the default 'build' command.
type BuildCmd struct {
	SDKVersion string `name:"sdk_version" help:"SDK version shown in the documentation (default: read from the core component headers)"`
	SDKRoot    string `name:"sdk_root" help:"Root of the SDK checkout (default: ../../..)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	b.applyOverrides(cfg)
	logger := root.configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunBuild(ctx, cfg, toolchain.ExecRunner{}, nil, logger)
}

// applyOverrides lets the flags win over the configuration file.
func (b *BuildCmd) applyOverrides(cfg *config.Config) {
	if b.SDKRoot != "" {
		cfg.SDKRoot = b.SDKRoot
	}
	if b.SDKVersion != "" {
		cfg.SDKVersion = b.SDKVersion
	}
}

// RunBuild resolves the layout and tools of cfg and runs the pipeline. A nil
// lookPath searches PATH.
func RunBuild(ctx context.Context, cfg *config.Config, runner toolchain.Runner, lookPath toolchain.LookPathFunc, logger *slog.Logger) error {
	l, err := layout.New(cfg.SDKRoot)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve SDK root").
			Fatal().WithContext("path", cfg.SDKRoot).Build()
	}
	tools, err := toolchain.Discover(cfg.Tools, lookPath)
	if err != nil {
		return err
	}
	logger.Debug("Tools discovered",
		slog.String(toolchain.ToolDoxygen, tools.Doxygen),
		slog.String(toolchain.ToolCMake, tools.CMake),
		slog.String(toolchain.ToolApidoc, tools.Apidoc),
		slog.String(toolchain.ToolSphinx, tools.Sphinx))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	plan := pipeline.NewBuildPlanBuilder(cfg).
		WithLayout(l).
		WithTools(tools).
		ResolveBuild().
		Build()
	rep, err := pipeline.NewGenerator(plan,
		pipeline.WithRunner(runner),
		pipeline.WithRecorder(recorder),
		pipeline.WithLogger(logger),
	).Generate(ctx)

	if prom != nil {
		if werr := prom.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}
	if rep != nil {
		fmt.Println(rep.Summary())
	}
	return err
}
