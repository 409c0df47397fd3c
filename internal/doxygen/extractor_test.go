package doxygen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/depgraph"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain/faketool"
)

func versionHandler(v string) faketool.Handler {
	return func(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		if len(cmd.Args) == 1 && cmd.Args[0] == "--version" {
			return toolchain.Result{Stdout: []byte(v + "\n")}, nil
		}
		return toolchain.Result{}, nil
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		out     string
		want    string
		wantErr bool
	}{
		{"1.9.1", "1.9.1", false},
		{"1.10.0 (abc123)", "1.10.0", false},
		{"1.8.17", "", true},
		{"2.0.0", "", true},
		{"doxygen unknown", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			runner := faketool.New().Handle(toolchain.ToolDoxygen, versionHandler(tt.out))
			got, err := CheckVersion(context.Background(), runner, "/usr/bin/doxygen")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCategory(err, errors.CategoryVersionMismatch))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func setup(t *testing.T, runner toolchain.Runner) (*Extractor, layout.Layout) {
	t.Helper()
	l, err := layout.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(l.DoxygenConfigDir(), 0o750))
	require.NoError(t, os.WriteFile(l.DoxygenConfigFile(), []byte("# cfg"), 0o600))

	catalog := component.NewCatalog("aws-cpp-sdk-core",
		[]string{"aws-cpp-sdk-transfer"}, []string{"aws-cpp-sdk-s3"})
	e, err := NewExtractor(context.Background(), Options{
		Runner:      runner,
		Doxygen:     "/usr/bin/doxygen",
		Layout:      l,
		Catalog:     catalog,
		SDKVersion:  "1.11.42",
		MacroPrefix: "aws-cpp-sdk-",
		Timeout:     time.Minute,
	})
	require.NoError(t, err)
	return e, l
}

func TestNewExtractorFailures(t *testing.T) {
	l, err := layout.New(t.TempDir())
	require.NoError(t, err)
	catalog := component.NewCatalog("aws-cpp-sdk-core", nil, nil)

	_, err = NewExtractor(context.Background(), Options{Runner: faketool.New(), Layout: l, Catalog: catalog})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryToolMissing))

	old := faketool.New().Handle(toolchain.ToolDoxygen, versionHandler("1.8.0"))
	_, err = NewExtractor(context.Background(), Options{Runner: old, Doxygen: "doxygen", Layout: l, Catalog: catalog})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryVersionMismatch))

	ok := faketool.New().Handle(toolchain.ToolDoxygen, versionHandler("1.9.8"))
	_, err = NewExtractor(context.Background(), Options{Runner: ok, Doxygen: "doxygen", Layout: l, Catalog: catalog})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestExtractEnvironment(t *testing.T) {
	runner := faketool.New().Handle(toolchain.ToolDoxygen, versionHandler("1.9.8"))
	e, l := setup(t, runner)
	e = e.WithDependencies(depgraph.Map{
		"aws-cpp-sdk-transfer": {"aws-cpp-sdk-s3", "aws-cpp-sdk-core"},
	})

	require.NoError(t, e.Extract(context.Background(), "aws-cpp-sdk-transfer"))

	calls := runner.Calls(toolchain.ToolDoxygen)
	require.Len(t, calls, 2)
	cmd := calls[1]
	assert.Equal(t, []string{l.DoxygenConfigFile()}, cmd.Args)
	assert.Equal(t, l.Root, cmd.Dir)
	assert.Equal(t, time.Minute, cmd.Timeout)
	assert.Equal(t, map[string]string{
		EnvProjectNumber:   "1.11.42",
		EnvClientName:      "aws-cpp-sdk-transfer",
		EnvInput:           "src/aws-cpp-sdk-transfer",
		EnvOutputDirectory: "docs/build/doxygen/sdk_libraries/aws-cpp-sdk-transfer",
		EnvTagFiles: "docs/build/doxygen/generated/aws-cpp-sdk-s3" + tagFileSeparator +
			"docs/build/doxygen/sdk_core/aws-cpp-sdk-core",
		EnvPredefined: "AWS_TRANSFER_API=",
		EnvConfigDir:  l.DoxygenConfigDir() + string(filepath.Separator),
	}, cmd.Env)

	assert.DirExists(t, filepath.Join(l.Root, "docs/build/doxygen/sdk_libraries/aws-cpp-sdk-transfer"))
}

func TestExtractCoreHasNoTagFiles(t *testing.T) {
	runner := faketool.New().Handle(toolchain.ToolDoxygen, versionHandler("1.9.8"))
	e, _ := setup(t, runner)

	env := e.Environment("aws-cpp-sdk-core")
	assert.Empty(t, env[EnvTagFiles])
	assert.Equal(t, "AWS_CORE_API=", env[EnvPredefined])
	assert.Equal(t, "src/aws-cpp-sdk-core", env[EnvInput])
}

func TestExtractFailure(t *testing.T) {
	runner := faketool.New()
	runner.Handle(toolchain.ToolDoxygen, func(ctx context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		if cmd.Args[0] == "--version" {
			return versionHandler("1.9.8")(ctx, cmd)
		}
		return toolchain.Result{ExitCode: 2, Stderr: []byte("error: tag file not found")},
			&toolchain.ExitError{Command: cmd.String(), Code: 2}
	})
	e, _ := setup(t, runner)

	err := e.Extract(context.Background(), "aws-cpp-sdk-s3")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryExtraction))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, 2, ce.Context()["exit_code"])
	assert.Equal(t, "aws-cpp-sdk-s3", ce.Context()["component"])
}

func TestExtractTimeout(t *testing.T) {
	runner := faketool.New()
	runner.Handle(toolchain.ToolDoxygen, func(ctx context.Context, cmd toolchain.Command) (toolchain.Result, error) {
		if cmd.Args[0] == "--version" {
			return versionHandler("1.9.8")(ctx, cmd)
		}
		return toolchain.Result{ExitCode: -1}, fmt.Errorf("%w after 1m0s", toolchain.ErrTimeout)
	})
	e, _ := setup(t, runner)

	err := e.Extract(context.Background(), "aws-cpp-sdk-s3")
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrTimeout)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, "1m0s", ce.Context()["timeout"])
}
