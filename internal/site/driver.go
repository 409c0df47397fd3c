package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
	"git.home.luguber.info/inful/sdkdocs/internal/workspace"
)

// Environment variables read by the site configuration.
const (
	EnvSDKRoot         = "DOCS_SDK_ROOT"
	EnvDoxygenOutput   = "DOCS_DOXYGEN_OUTPUT_DIR"
	EnvComponent       = "DOCS_COMPONENT"
	EnvBaseBuildDir    = "DOCS_BASE_BUILD_DIR"
	EnvDependencies    = "DOCS_DEPENDENCIES"
	baseBuildDirValue  = "../../build/ALL"
	outputDirRelSphinx = "../build/ALL"
)

// BuildOrder is the group order of site builds. Each group finishes before
// the next one starts.
var BuildOrder = []component.Group{component.GroupCore, component.GroupClients, component.GroupLibs}

// Options configures a Driver.
type Options struct {
	Runner    toolchain.Runner
	Sphinx    string
	Layout    layout.Layout
	Workspace *workspace.Manager
	Deps      depgraph.Map
	Workers   int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Driver runs site builds and the final merge.
type Driver struct {
	opts   Options
	logger *slog.Logger
}

// NewDriver returns a Driver. A nil Workspace uses an ephemeral manager over
// the shared source tree.
func NewDriver(opts Options) *Driver {
	if opts.Workspace == nil {
		opts.Workspace = workspace.NewManager(opts.Layout.SphinxSource())
	}
	if opts.Deps == nil {
		opts.Deps = depgraph.Map{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{opts: opts, logger: logger}
}

// StageSources moves the assembled api tree out of the shared source so that
// per-component copies of the source do not carry every volume.
func (d *Driver) StageSources() error {
	l := d.opts.Layout
	if err := fsutil.Move(l.APIDir(), l.StagedAPIDir()); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to stage navigation volumes").
			Fatal().WithContext("path", l.APIDir()).Build()
	}
	return nil
}

// OutputDir returns the site output directory of component.
func (d *Driver) OutputDir(component string) string {
	return filepath.Join(d.opts.Layout.BuildAllDir(), component)
}

// Environment returns the variables passed to the site generator for component.
func (d *Driver) Environment(component string) map[string]string {
	env := map[string]string{
		EnvSDKRoot:       d.opts.Layout.Root,
		EnvDoxygenOutput: d.opts.Layout.DoxygenOutput(),
		EnvComponent:     component,
		EnvBaseBuildDir:  baseBuildDirValue,
	}
	if deps := d.opts.Deps.Dependencies(component); len(deps) > 0 {
		env[EnvDependencies] = strings.Join(deps, ";")
	}
	return env
}

// BuildComponent builds one component's site from its staged volume in an
// isolated source tree, removed afterwards.
func (d *Driver) BuildComponent(ctx context.Context, comp component.Component) error {
	volume := d.opts.Layout.StagedVolume(comp.Name)
	if !fsutil.IsDir(volume) {
		return errors.SiteBuildError("no navigation volume for component").
			WithContext("component", comp.Name).WithContext("path", volume).Build()
	}
	tree, err := d.opts.Workspace.Create(comp.Name, volume)
	if err != nil {
		return errors.WrapError(err, errors.CategorySiteBuild, "failed to prepare source tree").
			WithContext("component", comp.Name).Build()
	}
	defer func() {
		if cerr := tree.Cleanup(); cerr != nil {
			d.logger.Warn("Failed to remove source tree", logfields.Component(comp.Name), logfields.Error(cerr))
		}
	}()

	cmd := toolchain.Command{
		Tool:    toolchain.ToolSphinx,
		Path:    d.opts.Sphinx,
		Args:    []string{"-a", "-b", "html", tree.RelPath(), outputDirRelSphinx + "/" + comp.Name},
		Env:     d.Environment(comp.Name),
		Dir:     d.opts.Layout.SphinxDir(),
		Timeout: d.opts.Timeout,
	}
	d.logger.Info("Building component site", logfields.Component(comp.Name), logfields.Group(string(comp.Group)))
	res, err := d.opts.Runner.Run(ctx, cmd)
	if err != nil {
		d.logger.Error("Site build failed",
			logfields.Component(comp.Name), logfields.Error(err), slog.String("output", res.Output()))
		return errors.SiteBuildError("site generator failed").WithCause(err).
			WithContext("component", comp.Name).WithContext("exit_code", res.ExitCode).Build()
	}
	d.logger.Info("Built component site",
		logfields.Component(comp.Name), logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return nil
}

// BuildAll builds comps group by group in BuildOrder, at most Workers at a
// time. Failures are isolated per component; the result maps each failed
// component to its error. onDone, when set, is called after every component.
func (d *Driver) BuildAll(ctx context.Context, comps []component.Component,
	onDone func(comp component.Component, err error, elapsed time.Duration),
) map[string]error {
	var mu sync.Mutex
	failed := make(map[string]error)

	for _, group := range BuildOrder {
		var g errgroup.Group
		g.SetLimit(max(d.opts.Workers, 1))
		for _, comp := range comps {
			if comp.Group != group {
				continue
			}
			g.Go(func() error {
				start := time.Now()
				err := ctx.Err()
				if err == nil {
					err = d.BuildComponent(ctx, comp)
				}
				if onDone != nil {
					onDone(comp, err, time.Since(start))
				}
				if err != nil {
					mu.Lock()
					failed[comp.Name] = err
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
		d.logger.Info("Site group done", logfields.Group(string(group)))
	}
	return failed
}

// CleanOutput removes the previous per-component site output.
func (d *Driver) CleanOutput() error {
	dir := d.opts.Layout.BuildAllDir()
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to clear site output").
			Fatal().WithContext("path", dir).Build()
	}
	return nil
}
