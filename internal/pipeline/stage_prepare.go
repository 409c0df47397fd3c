package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/doxygen"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/navigation"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// stagePreflight enumerates the components, resolves the SDK version and
// checks the extraction tool before any output is touched.
func stagePreflight(ctx context.Context, bs *BuildState) error {
	p := bs.Plan
	catalog, err := component.Enumerate(p.Layout, p.Config.Build.CoreComponent)
	if err != nil {
		return report.NewFatalStageError(report.StagePreflight, err)
	}
	bs.Catalog = catalog

	version := p.SDKVersion
	if version == "" {
		version, err = component.ReadSDKVersion(p.Layout.Root, catalog.Core())
		if err != nil {
			return report.NewFatalStageError(report.StagePreflight, err)
		}
	}
	bs.SDKVersion = version
	bs.Report.SDKVersion = version

	ext, err := doxygen.NewExtractor(ctx, doxygen.Options{
		Runner:      bs.Generator.runner,
		Doxygen:     p.Tools.Doxygen,
		Layout:      p.Layout,
		Catalog:     catalog,
		SDKVersion:  version,
		MacroPrefix: p.Config.Build.ExportMacroPrefix,
		Timeout:     p.Config.Build.ExtractTimeoutDuration(),
		Logger:      bs.Logger,
	})
	if err != nil {
		return report.NewFatalStageError(report.StagePreflight, err)
	}
	bs.Extractor = ext
	bs.Report.ToolVersion = ext.ToolVersion()

	bs.Logger.Info("Components enumerated",
		slog.String("sdk_version", version),
		slog.Int("core", 1),
		slog.Int("libs", len(catalog.Group(component.GroupLibs))),
		slog.Int("clients", len(catalog.Group(component.GroupClients))))
	return nil
}

func stageMainIndex(_ context.Context, bs *BuildState) error {
	l := bs.Plan.Layout
	r, err := navigation.NewRenderer(l.TemplatesDir())
	if err != nil {
		return report.NewFatalStageError(report.StageMainIndex, err)
	}
	bs.Renderer = r
	for name, src := range r.Sources() {
		bs.Report.Templates[name] = src
		if src != navigation.SourceEmbedded {
			bs.Logger.Info("Using navigation template override", slog.String("template", name), logfields.Path(src))
		}
	}

	if err := navigation.GenerateMainIndex(l, bs.Catalog, r); err != nil {
		return report.NewFatalStageError(report.StageMainIndex, err)
	}
	return nil
}

func stageDependencyGraph(ctx context.Context, bs *BuildState) error {
	p := bs.Plan
	b := depgraph.Builder{
		Runner:  bs.Generator.runner,
		CMake:   p.Tools.CMake,
		Layout:  p.Layout,
		Filter:  p.Filter,
		Timeout: p.Config.Build.ExportTimeoutDuration(),
		Logger:  bs.Logger,
	}
	deps, err := b.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return report.NewCanceledStageError(report.StageDependencyGraph, err)
		}
		return report.NewFatalStageError(report.StageDependencyGraph, err)
	}
	bs.Deps = deps
	return nil
}
