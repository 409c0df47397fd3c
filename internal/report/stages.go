package report

import "fmt"

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

const (
	StagePreflight       StageName = "preflight"
	StageMainIndex       StageName = "main_index"
	StageDependencyGraph StageName = "dependency_graph"
	StageExtract         StageName = "extract"
	StageApidoc          StageName = "apidoc"
	StageVolumes         StageName = "volumes"
	StageSiteBuild       StageName = "site_build"
	StageMerge           StageName = "merge"
	StageLinkAudit       StageName = "link_audit"
)

// StageErrorKind enumerates the severity of a stage error.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must stop.
	StageErrorPartial  StageErrorKind = "partial"  // Some components failed; later stages continue with the rest.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; build continues.
	StageErrorCanceled StageErrorKind = "canceled" // Context canceled.
)

// StageError is a structured error carrying the stage and kind.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether a rerun may succeed without changes.
func (e *StageError) Transient() bool { return e.Kind == StageErrorCanceled }

func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewPartialStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorPartial, Stage: stage, Err: err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult is the recorded outcome of one stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultPartial  StageResult = "partial"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
	StageResultSkipped  StageResult = "skipped"
)

// Phase names a per-component step tracked in the report.
type Phase string

const (
	PhaseExtract   Phase = "extract"
	PhaseApidoc    Phase = "apidoc"
	PhaseSiteBuild Phase = "site_build"
	PhaseMerge     Phase = "merge"
)

// Phases lists the tracked phases in pipeline order.
var Phases = []Phase{PhaseExtract, PhaseApidoc, PhaseSiteBuild, PhaseMerge}

// ComponentOutcome is the result of one phase for one component.
type ComponentOutcome string

const (
	ComponentSuccess ComponentOutcome = "success"
	ComponentFailed  ComponentOutcome = "failed"
	ComponentSkipped ComponentOutcome = "skipped"
	ComponentWarning ComponentOutcome = "warning"
)
