package depgraph

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

const (
	exportFile     = "aws-cpp-sdk.dot"
	normalizedFile = "aws-cpp-sdk-formatted.dot"
)

// Builder runs the graph exporter and turns its output into a validated Map.
type Builder struct {
	Runner  toolchain.Runner
	CMake   string
	Layout  layout.Layout
	Filter  Filter
	Timeout time.Duration
	Logger  *slog.Logger
}

// Build exports the project graph and returns the dependency map. Every failure
// is a GraphExtractionError.
func (b *Builder) Build(ctx context.Context) (Map, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if b.CMake == "" {
		return nil, errors.GraphExtractionError("graph exporter executable is missing").
			WithContext("tool", toolchain.ToolCMake).Build()
	}

	scratch := b.Layout.DepsBuildDir()
	if err := os.MkdirAll(scratch, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryGraphExtraction, "failed to create graph scratch directory").
			Fatal().WithContext("path", scratch).Build()
	}

	rel := filepath.Base(scratch)
	cmd := toolchain.Command{
		Tool:    toolchain.ToolCMake,
		Path:    b.CMake,
		Args:    []string{"-GNinja", "-B" + rel, "--graphviz=" + rel + "/" + exportFile, "."},
		Dir:     b.Layout.Root,
		Timeout: b.Timeout,
	}
	logger.Info("Exporting dependency graph", logfields.Tool(cmd.Tool), logfields.Path(scratch))
	res, err := b.Runner.Run(ctx, cmd)
	if err != nil {
		logger.Error("Graph export failed",
			logfields.Tool(cmd.Tool), logfields.Error(err), slog.String("output", res.Output()))
		return nil, errors.GraphExtractionError("graph exporter failed").
			WithCause(err).WithContext("command", cmd.String()).Build()
	}

	raw, err := os.ReadFile(filepath.Join(scratch, exportFile))
	if err != nil {
		return nil, errors.GraphExtractionError("graph exporter produced no output").
			WithCause(err).WithContext("path", filepath.Join(scratch, exportFile)).Build()
	}
	edges, err := ParseEdges(bytes.NewReader(raw), b.Filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteEdges(&buf, edges); err == nil {
		if werr := os.WriteFile(filepath.Join(scratch, normalizedFile), buf.Bytes(), 0o600); werr != nil {
			logger.Warn("Failed to write normalized edge list", logfields.Error(werr))
		}
	}

	m := BuildMap(edges, b.Filter)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Dependency graph built",
		logfields.Count(len(edges)), slog.Int("components", len(m)))
	return m, nil
}
