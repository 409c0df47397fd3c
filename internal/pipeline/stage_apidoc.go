package pipeline

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/apidoc"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/navigation"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// stageApidoc converts the extracted XML of every extracted component into
// fragments, removes fragments repeated from core and writes module indexes.
func stageApidoc(ctx context.Context, bs *BuildState) error {
	if len(bs.Extracted) == 0 {
		return report.NewPartialStageError(report.StageApidoc,
			errors.ApidocError("no component was extracted").Build())
	}

	p := bs.Plan
	a := apidoc.NewAssembler(apidoc.Options{
		Runner:  bs.Generator.runner,
		Apidoc:  p.Tools.Apidoc,
		Layout:  p.Layout,
		Workers: p.Workers,
		Timeout: p.Config.Build.ApidocTimeoutDuration(),
		Logger:  bs.Logger,
	}, bs.Renderer)
	bs.Generator.recorder.SetWorkers(string(report.PhaseApidoc), p.Workers)

	start := time.Now()
	res, err := a.Assemble(ctx, bs.Extracted)
	if res == nil {
		return report.NewFatalStageError(report.StageApidoc, err)
	}
	bs.Report.DuplicatesRemoved = res.DuplicatesRemoved
	bs.Generator.recorder.AddDuplicatesRemoved(res.DuplicatesRemoved)

	// Per-component durations are not tracked by the assembler; the stage
	// duration is attributed to each component.
	obs := &phaseObserver{bs: bs, phase: report.PhaseApidoc}
	elapsed := time.Since(start)
	for _, comp := range bs.Extracted {
		ferr := res.Failed[comp.Name]
		obs.record(comp, ferr, elapsed)
		if ferr == nil {
			bs.Converted = append(bs.Converted, comp)
		}
	}

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return report.NewCanceledStageError(report.StageApidoc, ctx.Err())
	case len(res.Failed) == 0 || errors.HasSeverity(err, errors.SeverityFatal):
		return report.NewFatalStageError(report.StageApidoc, err)
	}
	return report.NewPartialStageError(report.StageApidoc, err)
}

// stageVolumes builds one navigation volume per converted component.
func stageVolumes(ctx context.Context, bs *BuildState) error {
	failed := navigation.BuildVolumes(ctx, bs.Plan.Layout, bs.Converted, bs.Plan.Workers)

	var errs []error
	for _, comp := range bs.Converted {
		if err, ok := failed[comp.Name]; ok {
			bs.Report.SetComponentOutcome(comp.Name, string(comp.Group), report.PhaseApidoc, report.ComponentFailed, err)
			errs = append(errs, err)
			continue
		}
		bs.Volumes = append(bs.Volumes, comp)
	}

	switch {
	case ctx.Err() != nil:
		return report.NewCanceledStageError(report.StageVolumes, ctx.Err())
	case len(errs) > 0:
		return report.NewPartialStageError(report.StageVolumes, stderrors.Join(errs...))
	}
	return nil
}

func sortedKeys(m map[string]error) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
