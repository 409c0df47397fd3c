package pipeline

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// StageOutcome is the normalized result of one stage execution.
type StageOutcome struct {
	Stage  report.StageName
	Error  *report.StageError
	Result report.StageResult
	Abort  bool
}

func resultFromStageErrorKind(k report.StageErrorKind) report.StageResult {
	switch k {
	case report.StageErrorPartial:
		return report.StageResultPartial
	case report.StageErrorWarning:
		return report.StageResultWarning
	case report.StageErrorCanceled:
		return report.StageResultCanceled
	default:
		return report.StageResultFatal
	}
}

// classifyStageResult converts the error returned by a stage into a
// StageOutcome. Errors that are not StageErrors are fatal, except context
// cancellation.
func classifyStageResult(stage report.StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: report.StageResultSuccess}
	}
	if stderrors.Is(err, errStageSkipped) {
		return StageOutcome{Stage: stage, Result: report.StageResultSkipped}
	}

	var se *report.StageError
	if !stderrors.As(err, &se) {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			se = report.NewCanceledStageError(stage, err)
		} else {
			se = report.NewFatalStageError(stage, err)
		}
	}
	return StageOutcome{
		Stage:  stage,
		Error:  se,
		Result: resultFromStageErrorKind(se.Kind),
		Abort:  se.Kind == report.StageErrorFatal || se.Kind == report.StageErrorCanceled,
	}
}
