package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sdkdocs/internal/config"
	"git.home.luguber.info/inful/sdkdocs/internal/doxygen"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/metrics"
	"git.home.luguber.info/inful/sdkdocs/internal/report"
	"git.home.luguber.info/inful/sdkdocs/internal/site"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain/faketool"
)

const (
	core     = "aws-cpp-sdk-core"
	transfer = "aws-cpp-sdk-transfer"
	s3       = "aws-cpp-sdk-s3"
	sqs      = "aws-cpp-sdk-sqs"
)

// groups of the fixture SDK, used by the fake site generator to emit one
// page per component.
var groups = map[string]string{core: "core", transfer: "libs", s3: "clients", sqs: "clients"}

const graphExport = `digraph "aws-cpp-sdk" {
    "node0" -> "node1" [ style = dotted ] // aws-cpp-sdk-core -> aws-crt-cpp
    "node2" -> "node0" [ style = dotted ] // aws-cpp-sdk-s3 -> aws-cpp-sdk-core
    "node3" -> "node2" [ style = dotted ] // aws-cpp-sdk-transfer -> aws-cpp-sdk-s3
    "node3" -> "node0" [ style = dotted ] // aws-cpp-sdk-transfer -> aws-cpp-sdk-core
    "node4" -> "node0" [ style = dotted ] // aws-cpp-sdk-sqs -> aws-cpp-sdk-core
    "node5" -> "node2" [ style = dotted ] // s3-sample -> aws-cpp-sdk-s3
}
`

const versionHeader = `#pragma once
#define AWS_SDK_VERSION_STRING "1.11.42"
#define AWS_SDK_VERSION_MAJOR 1
#define AWS_SDK_VERSION_MINOR 11
#define AWS_SDK_VERSION_PATCH 42
`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newSDK(t *testing.T) layout.Layout {
	t.Helper()
	l, err := layout.New(t.TempDir())
	require.NoError(t, err)
	write(t, l.Path("src", core, "include", "aws", "core", "VersionConfig.h"), versionHeader)
	write(t, l.Path("src", transfer, "CMakeLists.txt"), "")
	write(t, l.Path("generated", "src", s3, "CMakeLists.txt"), "")
	write(t, l.Path("generated", "src", sqs, "CMakeLists.txt"), "")
	write(t, l.DoxygenConfigFile(), "PROJECT_NUMBER = $(PROJECT_NUMBER)\n")
	write(t, filepath.Join(l.SphinxSource(), "conf.py"), "project = 'sdk'\n")
	return l
}

// tools fakes the four executables against the SDK tree. Components listed
// in failExtract fail with exit code 1.
type tools struct {
	*faketool.Runner

	mu        sync.Mutex
	extracted []string
}

func newTools(t *testing.T, doxygenVersion string, failExtract ...string) *tools {
	tl := &tools{Runner: faketool.New()}
	tl.Handle(toolchain.ToolDoxygen, func(ctx context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		if len(cmd.Args) == 1 && cmd.Args[0] == "--version" {
			return toolchain.Result{Stdout: []byte(doxygenVersion + "\n")}, nil
		}
		name := cmd.Env[doxygen.EnvClientName]
		tl.mu.Lock()
		tl.extracted = append(tl.extracted, name)
		tl.mu.Unlock()
		for _, f := range failExtract {
			if f == name {
				return faketool.Exit(1, "error: cannot parse headers")(ctx, cmd)
			}
		}
		xml := filepath.Join(cmd.Dir, filepath.FromSlash(cmd.Env[doxygen.EnvOutputDirectory]), "xml")
		if err := os.MkdirAll(xml, 0o750); err != nil {
			return toolchain.Result{}, err
		}
		return toolchain.Result{}, os.WriteFile(filepath.Join(xml, "index.xml"), []byte("<doxygenindex/>"), 0o600)
	})
	tl.Handle(toolchain.ToolCMake, func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		return toolchain.Result{}, os.WriteFile(filepath.Join(cmd.Dir, "tmp_deps_map_build", "aws-cpp-sdk.dot"), []byte(graphExport), 0o600)
	})
	tl.Handle(toolchain.ToolApidoc, func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		dest, name := cmd.Args[2], cmd.Args[4]
		files := []string{"classlist.rst", "class/classAws_1_1Utils_1_1Outcome.rst"}
		if name != core {
			files = append(files, fmt.Sprintf("class/class_%s.rst", strings.ReplaceAll(name, "-", "_")))
		}
		for _, f := range files {
			path := filepath.Join(dest, filepath.FromSlash(f))
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return toolchain.Result{}, err
			}
			if err := os.WriteFile(path, []byte(f), 0o600); err != nil {
				return toolchain.Result{}, err
			}
		}
		return toolchain.Result{}, nil
	})
	tl.Handle(toolchain.ToolSphinx, func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		source := filepath.Join(cmd.Dir, cmd.Args[3])
		out := filepath.Join(cmd.Dir, cmd.Args[4])
		comp := cmd.Env[site.EnvComponent]
		if _, err := os.Stat(filepath.Join(source, "api", groups[comp], comp, "module.rst")); err != nil {
			return toolchain.Result{}, err
		}
		for name, group := range groups {
			body := "placeholder"
			if name == comp {
				body = "real " + comp
			}
			write(t, filepath.Join(out, "api", group, name, "module.html"), body)
		}
		write(t, filepath.Join(out, "index.html"),
			`<html><body><a href="api/core/aws-cpp-sdk-core/module.html">core</a></body></html>`)
		write(t, filepath.Join(out, ".doctrees", "env.pickle"), "")
		write(t, filepath.Join(out, "objects.inv"), "")
		return toolchain.Result{}, nil
	})
	return tl
}

func (tl *tools) extractedComponents() []string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return append([]string(nil), tl.extracted...)
}

func newGenerator(l layout.Layout, runner toolchain.Runner, opts ...Option) *Generator {
	cfg := config.Default()
	cfg.Build.Workers = 2
	cfg.Build.SiteWorkers = 2
	plan := NewBuildPlanBuilder(cfg).
		WithLayout(l).
		WithTools(toolchain.Tools{
			Doxygen: "/usr/bin/doxygen",
			CMake:   "/usr/bin/cmake3",
			Apidoc:  "/usr/bin/breathe-apidoc",
			Sphinx:  "/usr/bin/sphinx-build",
		}).
		ResolveBuild().
		Build()
	opts = append([]Option{WithRunner(runner), WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewGenerator(plan, opts...)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestGenerate(t *testing.T) {
	l := newSDK(t)
	tl := newTools(t, "1.9.8")
	rec := metrics.NewPrometheusRecorder(nil)

	rep, err := newGenerator(l, tl, WithRecorder(rec)).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.OutcomeSuccess, rep.Outcome)
	assert.Equal(t, "1.11.42", rep.SDKVersion)
	assert.Equal(t, "1.9.8", rep.ToolVersion)

	extracted := tl.extractedComponents()
	require.Len(t, extracted, 4)
	assert.Less(t, indexOf(extracted, core), indexOf(extracted, s3))
	assert.Less(t, indexOf(extracted, core), indexOf(extracted, sqs))
	assert.Less(t, indexOf(extracted, s3), indexOf(extracted, transfer))

	for _, stage := range DefaultStages() {
		assert.Equal(t, report.StageResultSuccess, rep.StageResults[stage.Name], stage.Name)
	}
	assert.Equal(t, 3, rep.DuplicatesRemoved, "the core class is removed from every other component")

	merged := l.MergedDir()
	body, err := os.ReadFile(filepath.Join(merged, "api", "clients", s3, "module.html"))
	require.NoError(t, err)
	assert.Equal(t, "real "+s3, string(body))
	body, err = os.ReadFile(filepath.Join(merged, "api", "core", core, "module.html"))
	require.NoError(t, err)
	assert.Equal(t, "real "+core, string(body))
	assert.NoDirExists(t, filepath.Join(merged, ".doctrees"))
	assert.NoFileExists(t, filepath.Join(merged, "objects.inv"))
	assert.NoDirExists(t, filepath.Join(l.SphinxDir(), "source-"+s3), "source trees are removed")

	data, err := os.ReadFile(filepath.Join(l.ReportDir(), report.JSONFile))
	require.NoError(t, err)
	var persisted report.BuildReportSerializable
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, rep.RunID, persisted.RunID)
	assert.Equal(t, "success", persisted.Outcome)
	assert.Equal(t, report.ComponentSuccess, persisted.Components[transfer].Phases[report.PhaseSiteBuild])

	prom := filepath.Join(t.TempDir(), "sdkdocs.prom")
	require.NoError(t, rec.WriteTextfile(prom))
	text, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(text), `sdkdocs_build_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, string(text), `sdkdocs_component_task_results_total{phase="extract",result="success"} 4`)
}

func TestGenerateIsolatesComponentFailure(t *testing.T) {
	l := newSDK(t)
	tl := newTools(t, "1.9.8", s3)

	rep, err := newGenerator(l, tl).Generate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryExtraction))
	assert.Equal(t, report.OutcomeFailed, rep.Outcome)

	assert.NotContains(t, tl.extractedComponents(), transfer, "a dependent of a failed component is never submitted")
	assert.Contains(t, tl.extractedComponents(), sqs)

	outcome := func(name string, phase report.Phase) report.ComponentOutcome {
		o, _ := rep.ComponentOutcome(name, phase)
		return o
	}
	assert.Equal(t, report.ComponentFailed, outcome(s3, report.PhaseExtract))
	assert.Equal(t, report.ComponentSkipped, outcome(transfer, report.PhaseExtract))
	assert.Equal(t, report.ComponentSuccess, outcome(sqs, report.PhaseSiteBuild))
	assert.Equal(t, report.ComponentWarning, outcome(s3, report.PhaseMerge))

	assert.Equal(t, report.StageResultPartial, rep.StageResults[report.StageExtract])
	assert.Equal(t, report.StageResultSuccess, rep.StageResults[report.StageSiteBuild])
	assert.Equal(t, report.StageResultWarning, rep.StageResults[report.StageMerge])
	assert.NotEmpty(t, rep.Warnings)

	assert.FileExists(t, filepath.Join(l.BuildAllDir(), core, "index.html"), "completed work stays on disk")
	assert.FileExists(t, filepath.Join(l.MergedDir(), "api", "clients", sqs, "module.html"))
	assert.FileExists(t, filepath.Join(l.ReportDir(), report.SummaryFile))
}

func TestGenerateFatalPreflight(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(t *testing.T, l layout.Layout)
		version  string
		category errors.ErrorCategory
	}{
		{
			name:     "old extraction tool",
			version:  "1.8.17",
			category: errors.CategoryVersionMismatch,
		},
		{
			name:    "missing core component",
			version: "1.9.8",
			mutate: func(t *testing.T, l layout.Layout) {
				require.NoError(t, os.RemoveAll(l.Path("src", core)))
			},
			category: errors.CategoryNotFound,
		},
		{
			name:    "missing extraction config",
			version: "1.9.8",
			mutate: func(t *testing.T, l layout.Layout) {
				require.NoError(t, os.Remove(l.DoxygenConfigFile()))
			},
			category: errors.CategoryConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newSDK(t)
			if tt.mutate != nil {
				tt.mutate(t, l)
			}
			tl := newTools(t, tt.version)

			rep, err := newGenerator(l, tl).Generate(context.Background())
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), err.Error())
			assert.Equal(t, report.OutcomeFailed, rep.Outcome)
			assert.Equal(t, report.StageResultFatal, rep.StageResults[report.StagePreflight])
			assert.NotContains(t, rep.StageResults, report.StageMainIndex)
			assert.Empty(t, tl.Calls(toolchain.ToolCMake))
			assert.FileExists(t, filepath.Join(l.ReportDir(), report.JSONFile))
		})
	}
}

func TestGenerateGraphCycleIsFatal(t *testing.T) {
	l := newSDK(t)
	tl := newTools(t, "1.9.8")
	tl.Handle(toolchain.ToolCMake, func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		cycle := "\"a\" -> \"b\" // aws-cpp-sdk-s3 -> aws-cpp-sdk-transfer\n" +
			"\"b\" -> \"a\" // aws-cpp-sdk-transfer -> aws-cpp-sdk-s3\n"
		return toolchain.Result{}, os.WriteFile(filepath.Join(cmd.Dir, "tmp_deps_map_build", "aws-cpp-sdk.dot"), []byte(cycle), 0o600)
	})

	rep, err := newGenerator(l, tl).Generate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryGraphExtraction))
	assert.Equal(t, report.StageResultFatal, rep.StageResults[report.StageDependencyGraph])
	assert.Empty(t, tl.extractedComponents())
}

func TestGenerateCanceled(t *testing.T) {
	l := newSDK(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newGenerator(l, newTools(t, "1.9.8")).Generate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, report.OutcomeCanceled, rep.Outcome)
	assert.Equal(t, report.StageResultCanceled, rep.StageResults[report.StagePreflight])
}

func TestGenerateCustomStages(t *testing.T) {
	l := newSDK(t)
	var seen []report.StageName
	observe := func(name report.StageName, err error) StageDef {
		return StageDef{Name: name, Fn: func(context.Context, *BuildState) error {
			seen = append(seen, name)
			return err
		}}
	}

	rep, err := newGenerator(l, faketool.New(), WithStages(
		observe(report.StageMainIndex, nil),
		observe(report.StageMerge, report.NewWarnStageError(report.StageMerge, fmt.Errorf("skipped one"))),
		observe(report.StageLinkAudit, errStageSkipped),
	)).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []report.StageName{report.StageMainIndex, report.StageMerge, report.StageLinkAudit}, seen)
	assert.Equal(t, report.OutcomeWarning, rep.Outcome)
	assert.Equal(t, report.StageResultSkipped, rep.StageResults[report.StageLinkAudit])
}
