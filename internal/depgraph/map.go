package depgraph

import (
	stderrors "errors"
	"slices"
	"sort"

	"github.com/dominikbraun/graph"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// Map records, per component, the components it depends on in export order.
// Components without an entry have no dependencies.
type Map map[string][]string

// BuildMap folds edges into a Map. An edge into the runtime support layer
// empties the dependent's list, and the list stays empty for later edges of
// that dependent. Duplicate edges are recorded once.
func BuildMap(edges []Edge, f Filter) Map {
	m := make(Map)
	pinned := make(map[string]bool)
	for _, e := range edges {
		if f.IsRuntimeSupport(e.To) {
			m[e.From] = []string{}
			pinned[e.From] = true
			continue
		}
		if pinned[e.From] || slices.Contains(m[e.From], e.To) {
			continue
		}
		m[e.From] = append(m[e.From], e.To)
	}
	return m
}

// Dependencies returns the direct dependencies of name.
func (m Map) Dependencies(name string) []string {
	return m[name]
}

// Components returns the map's keys sorted.
func (m Map) Components() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dependents returns the components that list name as a direct dependency, sorted.
func (m Map) Dependents(name string) []string {
	var out []string
	for k, deps := range m {
		if slices.Contains(deps, name) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Graph returns the map as a directed acyclic graph with edges pointing from a
// dependency to its dependents. A cycle is a GraphExtractionError.
func (m Map) Graph() (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	addVertex := func(v string) error {
		if err := g.AddVertex(v); err != nil && !stderrors.Is(err, graph.ErrVertexAlreadyExists) {
			return err
		}
		return nil
	}

	for _, from := range m.Components() {
		if err := addVertex(from); err != nil {
			return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to add component").
				Fatal().WithContext("component", from).Build()
		}
		for _, to := range m[from] {
			if err := addVertex(to); err != nil {
				return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to add component").
					Fatal().WithContext("component", to).Build()
			}
			err := g.AddEdge(to, from)
			switch {
			case err == nil, stderrors.Is(err, graph.ErrEdgeAlreadyExists):
			case stderrors.Is(err, graph.ErrEdgeCreatesCycle):
				return nil, errors.GraphExtractionError("dependency cycle detected").
					WithCause(err).WithContext("component", from).WithContext("dependency", to).Build()
			default:
				return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to add dependency").
					Fatal().WithContext("component", from).WithContext("dependency", to).Build()
			}
		}
	}
	return g, nil
}

// Validate fails with a GraphExtractionError when the map contains a cycle.
func (m Map) Validate() error {
	_, err := m.Graph()
	return err
}

// Order returns every component of the map, dependencies before dependents,
// ties broken by name.
func (m Map) Order() ([]string, error) {
	g, err := m.Graph()
	if err != nil {
		return nil, err
	}
	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to order components").
			Fatal().Build()
	}
	return order, nil
}
