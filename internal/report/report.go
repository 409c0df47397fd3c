// Package report records the outcome of one documentation build and persists
// it next to the generated site.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
)

// SchemaVersion of the persisted report.
const SchemaVersion = 1

// File names written by Persist.
const (
	JSONFile    = "build-report.json"
	SummaryFile = "build-report.txt"
)

// BuildOutcome is the overall result of a run.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ComponentReport tracks one component across the phases.
type ComponentReport struct {
	Group  string                     `json:"group"`
	Phases map[Phase]ComponentOutcome `json:"phases"`
	Errors []string                   `json:"errors,omitempty"`
}

// BuildReport captures stage timings, per-component outcomes and the
// aggregated errors of a run. Mutators are safe for concurrent use.
type BuildReport struct {
	mu sync.Mutex

	SchemaVersion int
	RunID         string
	SDKRoot       string
	SDKVersion    string
	SDKCommit     string
	ToolVersion   string
	Start         time.Time
	End           time.Time

	StageDurations  map[StageName]time.Duration
	StageResults    map[StageName]StageResult
	StageErrorKinds map[StageName]StageErrorKind

	Components map[string]*ComponentReport

	DuplicatesRemoved int
	BrokenLinks       int
	BrokenLinkSamples []string
	// Templates maps navigation template names to their source (embedded or a file path).
	Templates map[string]string

	Errors   []error
	Warnings []error
	Outcome  BuildOutcome
}

// NewBuildReport starts a report for the SDK checkout at sdkRoot.
func NewBuildReport(sdkRoot, sdkVersion string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   SchemaVersion,
		RunID:           uuid.NewString(),
		SDKRoot:         sdkRoot,
		SDKVersion:      sdkVersion,
		SDKCommit:       DetectCommit(sdkRoot),
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageResults:    make(map[StageName]StageResult),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		Components:      make(map[string]*ComponentReport),
		Templates:       make(map[string]string),
	}
}

// AddError records an error that makes the run fail.
func (r *BuildReport) AddError(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

// AddWarning records a non-fatal problem.
func (r *BuildReport) AddWarning(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, err)
}

// SetComponentOutcome records the result of phase for a component. A non-nil
// err is attached to the component entry.
func (r *BuildReport) SetComponentOutcome(name, group string, phase Phase, outcome ComponentOutcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.Components[name]
	if !ok {
		cr = &ComponentReport{Group: group, Phases: make(map[Phase]ComponentOutcome)}
		r.Components[name] = cr
	}
	if cr.Group == "" {
		cr.Group = group
	}
	cr.Phases[phase] = outcome
	if err != nil {
		cr.Errors = append(cr.Errors, err.Error())
	}
}

// ComponentOutcome returns the recorded result of phase for a component.
func (r *BuildReport) ComponentOutcome(name string, phase Phase) (ComponentOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cr, ok := r.Components[name]
	if !ok {
		return "", false
	}
	o, ok := cr.Phases[phase]
	return o, ok
}

// ComponentsWith returns the sorted names whose phase ended with outcome.
func (r *BuildReport) ComponentsWith(phase Phase, outcome ComponentOutcome) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for name, cr := range r.Components {
		if cr.Phases[phase] == outcome {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// RecordStage stores the duration and result of a stage and emits metrics.
func (r *BuildReport) RecordStage(stage StageName, d time.Duration, res StageResult, recorder metrics.Recorder) {
	r.mu.Lock()
	r.StageDurations[stage] = d
	r.StageResults[stage] = res
	r.mu.Unlock()

	if recorder == nil {
		return
	}
	recorder.ObserveStageDuration(string(stage), d)
	switch res {
	case StageResultSuccess:
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultPartial:
		recorder.IncStageResult(string(stage), metrics.ResultFailed)
	case StageResultWarning:
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	case StageResultSkipped:
		recorder.IncStageResult(string(stage), metrics.ResultSkipped)
	}
}

// RecordStageError stores the kind of a stage error.
func (r *BuildReport) RecordStageError(se *StageError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StageErrorKinds[se.Stage] = se.Kind
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) DeriveOutcome() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Err joins the recorded errors; nil when the run did not fail.
func (r *BuildReport) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.Errors...)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("run=%s sdk=%s components=%d duration=%s errors=%d warnings=%d stages=%d duplicates=%d broken_links=%d outcome=%s",
		r.RunID, r.SDKVersion, len(r.Components), dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings),
		len(r.StageDurations), r.DuplicatesRemoved, r.BrokenLinks, string(r.Outcome))
}

// Persist writes build-report.json and build-report.txt into dir through a
// temporary file and rename.
func (r *BuildReport) Persist(dir string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, JSONFile), jb); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, SummaryFile), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
