package report

import "time"

// BuildReportSerializable is the JSON form of a BuildReport.
type BuildReportSerializable struct {
	SchemaVersion     int                        `json:"schema_version"`
	RunID             string                     `json:"run_id"`
	SDKRoot           string                     `json:"sdk_root"`
	SDKVersion        string                     `json:"sdk_version"`
	SDKCommit         string                     `json:"sdk_commit,omitempty"`
	ToolVersion       string                     `json:"tool_version,omitempty"`
	Start             time.Time                  `json:"start"`
	End               time.Time                  `json:"end"`
	StageDurations    map[string]int64           `json:"stage_durations_ms"`
	StageResults      map[string]string          `json:"stage_results"`
	StageErrorKinds   map[string]string          `json:"stage_error_kinds,omitempty"`
	Components        map[string]ComponentReport `json:"components"`
	DuplicatesRemoved int                        `json:"duplicates_removed"`
	BrokenLinks       int                        `json:"broken_links"`
	BrokenLinkSamples []string                   `json:"broken_link_samples,omitempty"`
	Templates         map[string]string          `json:"templates"`
	Errors            []string                   `json:"errors"`
	Warnings          []string                   `json:"warnings"`
	Outcome           string                     `json:"outcome"`
}

// SanitizedCopy returns a copy with errors converted to strings and durations
// to milliseconds.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &BuildReportSerializable{
		SchemaVersion:     r.SchemaVersion,
		RunID:             r.RunID,
		SDKRoot:           r.SDKRoot,
		SDKVersion:        r.SDKVersion,
		SDKCommit:         r.SDKCommit,
		ToolVersion:       r.ToolVersion,
		Start:             r.Start,
		End:               r.End,
		StageDurations:    make(map[string]int64, len(r.StageDurations)),
		StageResults:      make(map[string]string, len(r.StageResults)),
		StageErrorKinds:   make(map[string]string, len(r.StageErrorKinds)),
		Components:        make(map[string]ComponentReport, len(r.Components)),
		DuplicatesRemoved: r.DuplicatesRemoved,
		BrokenLinks:       r.BrokenLinks,
		BrokenLinkSamples: r.BrokenLinkSamples,
		Templates:         r.Templates,
		Errors:            make([]string, len(r.Errors)),
		Warnings:          make([]string, len(r.Warnings)),
		Outcome:           string(r.Outcome),
	}
	for k, v := range r.StageDurations {
		s.StageDurations[string(k)] = v.Milliseconds()
	}
	for k, v := range r.StageResults {
		s.StageResults[string(k)] = string(v)
	}
	for k, v := range r.StageErrorKinds {
		s.StageErrorKinds[string(k)] = string(v)
	}
	for k, v := range r.Components {
		s.Components[k] = ComponentReport{Group: v.Group, Phases: v.Phases, Errors: v.Errors}
	}
	if s.Templates == nil {
		s.Templates = map[string]string{}
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}
