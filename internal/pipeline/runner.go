package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// runStages executes stages in order. Every stage is timed and recorded. The
// first fatal or canceled outcome stops the run and is returned; partial
// failures and warnings are only recorded.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	g := bs.Generator
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := report.NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.RecordStageError(se)
			bs.Report.AddError(se)
			bs.Report.RecordStage(st.Name, 0, report.StageResultCanceled, g.recorder)
			g.observer.OnStageComplete(st.Name, 0, report.StageResultCanceled)
			return se
		default:
		}

		g.observer.OnStageStart(st.Name)
		bs.Logger.Info("Stage started", logfields.Stage(string(st.Name)))
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		out := classifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.RecordStageError(out.Error)
			if out.Error.Kind == report.StageErrorWarning {
				bs.Report.AddWarning(out.Error)
			} else {
				bs.Report.AddError(out.Error)
			}
		}
		bs.Report.RecordStage(st.Name, dur, out.Result, g.recorder)
		g.observer.OnStageComplete(st.Name, dur, out.Result)
		logStage(bs.Logger, out, dur)

		if out.Abort {
			return out.Error
		}
	}
	return nil
}

func logStage(logger *slog.Logger, out StageOutcome, dur time.Duration) {
	attrs := []any{
		logfields.Stage(string(out.Stage)),
		slog.String("result", string(out.Result)),
		logfields.DurationMS(float64(dur.Milliseconds())),
	}
	switch out.Result {
	case report.StageResultSuccess, report.StageResultSkipped:
		logger.Info("Stage completed", attrs...)
	case report.StageResultWarning:
		logger.Warn("Stage completed with warnings", append(attrs, logfields.Error(out.Error.Err))...)
	default:
		logger.Error("Stage failed", append(attrs, logfields.Error(out.Error.Err))...)
	}
}
