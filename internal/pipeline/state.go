package pipeline

import (
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/doxygen"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/navigation"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
	"git.home.luguber.info/inful/sdkdocs/internal/site"
)

// BuildState carries what stages hand to each other during one run.
type BuildState struct {
	Generator *Generator
	Plan      *BuildPlan
	Report    *report.BuildReport
	Logger    *slog.Logger

	Catalog    *component.Catalog
	SDKVersion string
	Deps       depgraph.Map
	Extractor  *doxygen.Extractor
	Renderer   *navigation.Renderer
	Driver     *site.Driver

	// Components that completed each step, sorted by name.
	Extracted []component.Component
	Converted []component.Component
	Volumes   []component.Component
	Built     []component.Component
}

func newBuildState(g *Generator, plan *BuildPlan, rep *report.BuildReport) *BuildState {
	return &BuildState{
		Generator: g,
		Plan:      plan,
		Report:    rep,
		Logger:    g.logger.With(logfields.RunID(rep.RunID)),
		Deps:      depgraph.Map{},
	}
}

func sortComponents(comps []component.Component) {
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
}
