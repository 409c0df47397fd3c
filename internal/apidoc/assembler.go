package apidoc

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// FragmentKinds are the groups requested from the converter.
const FragmentKinds = "class,struct,namespace"

// ModuleRenderer renders a component's module index.
type ModuleRenderer interface {
	RenderModule(component string, items []string) ([]byte, error)
}

// Options configures an Assembler.
type Options struct {
	Runner  toolchain.Runner
	Apidoc  string
	Layout  layout.Layout
	Workers int
	Timeout time.Duration
	Logger  *slog.Logger
}

// Assembler produces the full_doxy_index tree.
type Assembler struct {
	opts     Options
	renderer ModuleRenderer
	logger   *slog.Logger
}

// Result summarizes one assembly.
type Result struct {
	Converted         []string
	Failed            map[string]error
	DuplicatesRemoved int
}

// NewAssembler returns an Assembler rendering module indexes with r.
func NewAssembler(opts Options, r ModuleRenderer) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{opts: opts, renderer: r, logger: logger}
}

// Destination returns the fragment directory of comp.
func (a *Assembler) Destination(comp component.Component) string {
	return filepath.Join(a.opts.Layout.FullDoxyIndexDir(), string(comp.Group), comp.Name)
}

// Assemble rebuilds the fragment tree for comps: conversion on the worker
// pool, deduplication against core, then module indexes. Conversion failures
// are isolated per component and joined into the returned error; the Result
// is always populated.
func (a *Assembler) Assemble(ctx context.Context, comps []component.Component) (*Result, error) {
	dest := a.opts.Layout.FullDoxyIndexDir()
	if err := os.RemoveAll(dest); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to clear fragment tree").
			Fatal().WithContext("path", dest).Build()
	}

	res := &Result{Failed: make(map[string]error)}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(max(a.opts.Workers, 1))
	for _, comp := range comps {
		g.Go(func() error {
			err := a.Convert(ctx, comp)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[comp.Name] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, comp := range comps {
		if err, failed := res.Failed[comp.Name]; failed {
			errs = append(errs, err)
			continue
		}
		res.Converted = append(res.Converted, comp.Name)
	}

	removed, err := Dedup(dest, a.logger)
	res.DuplicatesRemoved = removed
	if err != nil {
		return res, err
	}

	for _, comp := range comps {
		if _, failed := res.Failed[comp.Name]; failed {
			continue
		}
		if err := a.WriteModuleIndex(comp); err != nil {
			res.Failed[comp.Name] = err
			errs = append(errs, err)
		}
	}
	return res, stderrors.Join(errs...)
}

// Convert runs the converter for one component.
func (a *Assembler) Convert(ctx context.Context, comp component.Component) error {
	xmlDir := filepath.Join(comp.DocPath(a.opts.Layout.Root), "xml")
	if !fsutil.IsDir(xmlDir) {
		return errors.ApidocError("no extracted XML for component").
			WithContext("component", comp.Name).WithContext("path", xmlDir).Build()
	}

	cmd := toolchain.Command{
		Tool: toolchain.ToolApidoc,
		Path: a.opts.Apidoc,
		Args: []string{
			"-f",
			"-o", a.Destination(comp),
			"-p", comp.Name,
			"-g", FragmentKinds,
			xmlDir,
		},
		Timeout: a.opts.Timeout,
	}
	res, err := a.opts.Runner.Run(ctx, cmd)
	if err != nil {
		a.logger.Error("Conversion failed",
			logfields.Component(comp.Name), logfields.Error(err), slog.String("output", res.Output()))
		return errors.ApidocError("conversion failed").WithCause(err).
			WithContext("component", comp.Name).WithContext("exit_code", res.ExitCode).Build()
	}
	a.logger.Debug("Converted component", logfields.Component(comp.Name), logfields.Group(string(comp.Group)))
	return nil
}
