package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/linkverify"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
	"git.home.luguber.info/inful/sdkdocs/internal/site"
	"git.home.luguber.info/inful/sdkdocs/internal/workspace"
)

// maxBrokenLinkSamples bounds the broken links listed in the report.
const maxBrokenLinkSamples = 20

// stageSiteBuild stages the navigation volumes and builds one site per
// component that has a volume.
func stageSiteBuild(ctx context.Context, bs *BuildState) error {
	p := bs.Plan
	l := p.Layout

	ws := workspace.NewManager(l.SphinxSource())
	if p.KeepSources {
		ws = workspace.NewPersistentManager(l.SphinxSource())
	}
	d := site.NewDriver(site.Options{
		Runner:    bs.Generator.runner,
		Sphinx:    p.Tools.Sphinx,
		Layout:    l,
		Workspace: ws,
		Deps:      bs.Deps,
		Workers:   p.SiteWorkers,
		Timeout:   p.Config.Build.SiteTimeoutDuration(),
		Logger:    bs.Logger,
	})
	bs.Driver = d

	if err := d.StageSources(); err != nil {
		return report.NewFatalStageError(report.StageSiteBuild, err)
	}
	if err := d.CleanOutput(); err != nil {
		return report.NewFatalStageError(report.StageSiteBuild, err)
	}
	if len(bs.Volumes) == 0 {
		return report.NewPartialStageError(report.StageSiteBuild,
			errors.SiteBuildError("no component has a navigation volume").Build())
	}

	bs.Generator.recorder.SetWorkers(string(report.PhaseSiteBuild), p.SiteWorkers)
	obs := &phaseObserver{bs: bs, phase: report.PhaseSiteBuild}
	failed := d.BuildAll(ctx, bs.Volumes, func(comp component.Component, err error, elapsed time.Duration) {
		obs.record(comp, err, elapsed)
	})

	var errs []error
	for _, comp := range bs.Volumes {
		if err, ok := failed[comp.Name]; ok {
			errs = append(errs, err)
			continue
		}
		bs.Built = append(bs.Built, comp)
	}
	bs.Logger.Info("Site builds finished",
		logfields.Count(len(bs.Built)), slog.Any("failed", sortedKeys(failed)))

	switch {
	case ctx.Err() != nil:
		return report.NewCanceledStageError(report.StageSiteBuild, ctx.Err())
	case len(errs) > 0:
		return report.NewPartialStageError(report.StageSiteBuild, stderrors.Join(errs...))
	}
	return nil
}

// stageMerge merges every component's site into the primary component's one.
// Components that cannot be merged are warnings.
func stageMerge(ctx context.Context, bs *BuildState) error {
	if bs.Driver == nil {
		return report.NewFatalStageError(report.StageMerge,
			errors.InternalError("merge requires the site build stage").Build())
	}
	primary := bs.Catalog.Lookup(bs.Plan.Config.Build.PrimaryComponent)
	var others []component.Component
	for _, c := range bs.Catalog.All() {
		if c.Name != primary.Name {
			others = append(others, c)
		}
	}

	res, err := bs.Driver.Merge(ctx, primary, others)
	if err != nil {
		bs.Report.SetComponentOutcome(primary.Name, string(primary.Group), report.PhaseMerge, report.ComponentFailed, err)
		if ctx.Err() != nil {
			return report.NewCanceledStageError(report.StageMerge, err)
		}
		return report.NewPartialStageError(report.StageMerge, err)
	}

	for _, name := range res.Merged {
		c := bs.Catalog.Lookup(name)
		bs.Report.SetComponentOutcome(c.Name, string(c.Group), report.PhaseMerge, report.ComponentSuccess, nil)
	}
	for name, w := range res.Warnings {
		c := bs.Catalog.Lookup(name)
		bs.Report.SetComponentOutcome(c.Name, string(c.Group), report.PhaseMerge, report.ComponentWarning, w)
	}
	bs.Generator.recorder.AddMergeWarnings(len(res.Warnings))

	if ctx.Err() != nil {
		return report.NewCanceledStageError(report.StageMerge, ctx.Err())
	}
	if len(res.Warnings) > 0 {
		return report.NewWarnStageError(report.StageMerge, stderrors.Join(res.WarningList()...))
	}
	return nil
}

// stageLinkAudit reports broken internal links of the merged site. Findings
// are warnings only.
func stageLinkAudit(ctx context.Context, bs *BuildState) error {
	dir := bs.Plan.Layout.MergedDir()
	if !fsutil.IsDir(dir) {
		bs.Logger.Info("No merged site to audit", logfields.Path(dir))
		return errStageSkipped
	}

	a := linkverify.Auditor{Workers: bs.Plan.Workers, Logger: bs.Logger}
	res, err := a.Audit(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return report.NewCanceledStageError(report.StageLinkAudit, err)
		}
		return report.NewWarnStageError(report.StageLinkAudit, err)
	}

	bs.Report.BrokenLinks = len(res.Broken)
	for i, b := range res.Broken {
		if i == maxBrokenLinkSamples {
			break
		}
		bs.Report.BrokenLinkSamples = append(bs.Report.BrokenLinkSamples, b.Page+": "+b.URL)
	}
	bs.Generator.recorder.SetBrokenLinks(len(res.Broken))
	bs.Logger.Info("Link audit finished",
		slog.Int("pages", res.Pages), slog.Int("links", res.Links), slog.Int("broken", len(res.Broken)))

	if len(res.Broken) > 0 {
		return report.NewWarnStageError(report.StageLinkAudit,
			fmt.Errorf("%d broken internal links in %s", len(res.Broken), dir))
	}
	return nil
}
