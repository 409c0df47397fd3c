// Package depgraph builds the component dependency map from the build system's
// graphviz export.
//
// The exporter is run once per pipeline. Its output is filtered to edges that
// point into the SDK or runtime-support namespaces, normalized into an
// "a->b" edge list next to the raw export, and folded into a Map. The map is
// validated for cycles before anything is scheduled on it.
package depgraph
