package pipeline

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

// StageFunc is the function signature of a pipeline stage.
type StageFunc func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name report.StageName
	Fn   StageFunc
}

// errStageSkipped is returned by a stage that had nothing to do.
var errStageSkipped = stderrors.New("stage skipped")

// DefaultStages returns the full documentation build in execution order.
func DefaultStages() []StageDef {
	return []StageDef{
		{report.StagePreflight, stagePreflight},
		{report.StageMainIndex, stageMainIndex},
		{report.StageDependencyGraph, stageDependencyGraph},
		{report.StageExtract, stageExtract},
		{report.StageApidoc, stageApidoc},
		{report.StageVolumes, stageVolumes},
		{report.StageSiteBuild, stageSiteBuild},
		{report.StageMerge, stageMerge},
		{report.StageLinkAudit, stageLinkAudit},
	}
}
