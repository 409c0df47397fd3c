package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// Generator runs the documentation build described by a BuildPlan.
type Generator struct {
	plan     *BuildPlan
	runner   toolchain.Runner
	recorder metrics.Recorder
	observer BuildObserver
	logger   *slog.Logger
	stages   []StageDef
}

// Option configures a Generator.
type Option func(*Generator)

// WithRunner sets the subprocess runner; toolchain.ExecRunner otherwise.
func WithRunner(r toolchain.Runner) Option {
	return func(g *Generator) { g.runner = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithObserver adds a build observer next to the metrics observer.
func WithObserver(o BuildObserver) Option {
	return func(g *Generator) { g.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithStages replaces the default stage list.
func WithStages(stages ...StageDef) Option {
	return func(g *Generator) { g.stages = stages }
}

// NewGenerator returns a Generator for plan.
func NewGenerator(plan *BuildPlan, opts ...Option) *Generator {
	g := &Generator{
		plan:     plan,
		runner:   toolchain.ExecRunner{},
		recorder: metrics.NoopRecorder{},
		observer: NoopObserver{},
		stages:   DefaultStages(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.observer = multiObserver{g.observer, recorderObserver{rec: g.recorder}}
	return g
}

// Generate runs every stage and persists the report under docs/build. The
// returned error is the fatal stage error that stopped the run, or the joined
// component failures of a run that completed; warnings never produce an error.
func (g *Generator) Generate(ctx context.Context) (*report.BuildReport, error) {
	l := g.plan.Layout
	rep := report.NewBuildReport(l.Root, g.plan.SDKVersion)

	bs := newBuildState(g, g.plan, rep)
	logger := bs.Logger
	logger.Info("Documentation build started",
		logfields.Path(l.Root), slog.String("sdk_commit", rep.SDKCommit))

	runErr := runStages(ctx, bs, g.stages)

	rep.Finish()
	rep.DeriveOutcome()
	g.observer.OnBuildComplete(rep)

	if err := rep.Persist(l.ReportDir()); err != nil {
		logger.Warn("Failed to persist build report", logfields.Path(l.ReportDir()), logfields.Error(err))
	}

	level := slog.LevelInfo
	if rep.Outcome == report.OutcomeFailed || rep.Outcome == report.OutcomeCanceled {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "Documentation build finished", slog.String("summary", rep.Summary()))

	if runErr != nil {
		return rep, runErr
	}
	return rep, rep.Err()
}

type multiObserver []BuildObserver

func (m multiObserver) OnStageStart(stage report.StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage report.StageName, d time.Duration, res report.StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m multiObserver) OnBuildComplete(rep *report.BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(rep)
	}
}
