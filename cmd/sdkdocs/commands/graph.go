package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/pipeline"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// GraphCmd implements the 'graph' command.
type GraphCmd struct {
	SDKRoot string `name:"sdk_root" help:"Root of the SDK checkout (default: ../../..)"`
	Format  string `short:"f" enum:"text,json" default:"text" help:"Output format (text|json)"`
}

func (g *GraphCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if g.SDKRoot != "" {
		cfg.SDKRoot = g.SDKRoot
	}
	logger := root.configureLogging(cfg)

	l, err := layout.New(cfg.SDKRoot)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve SDK root").
			Fatal().WithContext("path", cfg.SDKRoot).Build()
	}
	cmake, err := toolchain.Resolve(toolchain.ToolCMake, cfg.Tools, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan := pipeline.NewBuildPlanBuilder(cfg).ResolveBuild().Build()
	b := depgraph.Builder{
		Runner:  toolchain.ExecRunner{},
		CMake:   cmake,
		Layout:  l,
		Filter:  plan.Filter,
		Timeout: cfg.Build.ExportTimeoutDuration(),
		Logger:  logger,
	}
	deps, err := b.Build(ctx)
	if err != nil {
		return err
	}
	return WriteGraph(os.Stdout, deps, g.Format)
}

// graphDocument is the JSON form printed by the graph command.
type graphDocument struct {
	Order        []string            `json:"order"`
	Dependencies map[string][]string `json:"dependencies"`
}

// WriteGraph prints deps in build order: one "component: dep, dep" line per
// component, or a JSON document.
func WriteGraph(w io.Writer, deps depgraph.Map, format string) error {
	order, err := deps.Order()
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(graphDocument{Order: order, Dependencies: deps})
	}
	for _, c := range order {
		line := c + ":"
		if d := deps.Dependencies(c); len(d) > 0 {
			line += " " + strings.Join(d, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
