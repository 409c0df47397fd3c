package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/sdkdocs/internal/report"
)

func TestClassifyStageResult(t *testing.T) {
	boom := stderrors.New("boom")
	tests := []struct {
		name   string
		err    error
		result report.StageResult
		abort  bool
	}{
		{"success", nil, report.StageResultSuccess, false},
		{"skipped", errStageSkipped, report.StageResultSkipped, false},
		{"warning", report.NewWarnStageError(report.StageMerge, boom), report.StageResultWarning, false},
		{"partial", report.NewPartialStageError(report.StageExtract, boom), report.StageResultPartial, false},
		{"fatal", report.NewFatalStageError(report.StageExtract, boom), report.StageResultFatal, true},
		{"plain error is fatal", boom, report.StageResultFatal, true},
		{"wrapped cancellation", fmt.Errorf("extract: %w", context.Canceled), report.StageResultCanceled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := classifyStageResult(report.StageExtract, tt.err)
			assert.Equal(t, tt.result, out.Result)
			assert.Equal(t, tt.abort, out.Abort)
			if tt.err == nil || tt.err == errStageSkipped {
				assert.Nil(t, out.Error)
			} else {
				assert.NotNil(t, out.Error)
			}
		})
	}
}
