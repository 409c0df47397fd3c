package pipeline

import (
	"git.home.luguber.info/inful/sdkdocs/internal/config"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// BuildPlan is an immutable execution plan derived from config.
// It captures the resolved inputs and knobs for the pipeline stages.
type BuildPlan struct {
	Config *config.Config
	Layout layout.Layout
	Tools  toolchain.Tools

	// SDKVersion is read from the core component's headers when empty.
	SDKVersion string

	Workers     int
	SiteWorkers int
	Filter      depgraph.Filter
	KeepSources bool
}

// BuildPlanBuilder constructs a BuildPlan.
type BuildPlanBuilder struct {
	plan BuildPlan
}

// NewBuildPlanBuilder creates a builder with base config.
func NewBuildPlanBuilder(cfg *config.Config) *BuildPlanBuilder {
	return &BuildPlanBuilder{plan: BuildPlan{Config: cfg, SDKVersion: cfg.SDKVersion}}
}

// WithLayout sets the SDK checkout layout.
func (b *BuildPlanBuilder) WithLayout(l layout.Layout) *BuildPlanBuilder {
	b.plan.Layout = l
	return b
}

// WithTools sets the discovered executables.
func (b *BuildPlanBuilder) WithTools(t toolchain.Tools) *BuildPlanBuilder {
	b.plan.Tools = t
	return b
}

// WithSDKVersion overrides the configured SDK version.
func (b *BuildPlanBuilder) WithSDKVersion(v string) *BuildPlanBuilder {
	if v != "" {
		b.plan.SDKVersion = v
	}
	return b
}

// ResolveBuild copies the scheduling and graph filtering knobs from config.
func (b *BuildPlanBuilder) ResolveBuild() *BuildPlanBuilder {
	bc := b.plan.Config.Build
	b.plan.Workers = max(bc.Workers, 1)
	b.plan.SiteWorkers = max(bc.SiteWorkers, 1)
	b.plan.KeepSources = bc.KeepSources
	b.plan.Filter = depgraph.Filter{
		SDKPrefix:            bc.SDKPrefix,
		RuntimeSupportPrefix: bc.RuntimeSupportPrefix,
		ExcludeKeywords:      bc.ExcludeKeywords,
	}
	return b
}

// Build returns the constructed BuildPlan.
func (b *BuildPlanBuilder) Build() *BuildPlan {
	return &b.plan
}
