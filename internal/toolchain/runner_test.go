package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sdkdocs/internal/config"
	foundation "git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecRunner_CapturesOutputAndEnv(t *testing.T) {
	sh := requireShell(t)

	res, err := ExecRunner{}.Run(context.Background(), Command{
		Tool: "sh",
		Path: sh,
		Args: []string{"-c", `echo "$CLIENT_NAME"; echo oops >&2`},
		Env:  map[string]string{"CLIENT_NAME": "aws-cpp-sdk-s3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "aws-cpp-sdk-s3\n", string(res.Stdout))
	assert.Equal(t, "oops\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "aws-cpp-sdk-s3\noops", res.Output())
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	sh := requireShell(t)

	res, err := ExecRunner{}.Run(context.Background(), Command{
		Tool: "sh",
		Path: sh,
		Args: []string{"-c", "echo failing >&2; exit 3"},
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "failing\n", string(res.Stderr))
}

func TestExecRunner_Timeout(t *testing.T) {
	sh := requireShell(t)

	start := time.Now()
	_, err := ExecRunner{}.Run(context.Background(), Command{
		Tool:    "sh",
		Path:    sh,
		Args:    []string{"-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommandRendering(t *testing.T) {
	c := Command{
		Path: "/usr/bin/doxygen",
		Args: []string{"Doxyfile-prj.cfg"},
		Env:  map[string]string{"OUTPUT_DIRECTORY": "out", "CLIENT_NAME": "x"},
	}
	assert.Equal(t, "/usr/bin/doxygen Doxyfile-prj.cfg", c.String())
	assert.Equal(t, []string{"CLIENT_NAME=x", "OUTPUT_DIRECTORY=out"}, c.EnvList())
}

func fakeLookPath(available map[string]string) LookPathFunc {
	return func(file string) (string, error) {
		if p, ok := available[file]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
}

func TestDiscover(t *testing.T) {
	t.Run("prefers cmake3 and honours overrides", func(t *testing.T) {
		tools, err := Discover(config.ToolsConfig{Sphinx: "/opt/sphinx-build-3"}, fakeLookPath(map[string]string{
			"doxygen":             "/usr/bin/doxygen",
			"cmake3":              "/usr/bin/cmake3",
			"cmake":               "/usr/bin/cmake",
			"breathe-apidoc":      "/usr/bin/breathe-apidoc",
			"/opt/sphinx-build-3": "/opt/sphinx-build-3",
		}))
		require.NoError(t, err)
		assert.Equal(t, Tools{
			Doxygen: "/usr/bin/doxygen",
			CMake:   "/usr/bin/cmake3",
			Apidoc:  "/usr/bin/breathe-apidoc",
			Sphinx:  "/opt/sphinx-build-3",
		}, tools)
	})

	t.Run("falls back to cmake", func(t *testing.T) {
		tools, err := Discover(config.ToolsConfig{}, fakeLookPath(map[string]string{
			"doxygen":        "/usr/bin/doxygen",
			"cmake":          "/usr/bin/cmake",
			"breathe-apidoc": "/usr/bin/breathe-apidoc",
			"sphinx-build":   "/usr/bin/sphinx-build",
		}))
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/cmake", tools.CMake)
	})

	t.Run("missing tools are fatal", func(t *testing.T) {
		_, err := Discover(config.ToolsConfig{}, fakeLookPath(map[string]string{
			"cmake": "/usr/bin/cmake",
		}))
		require.Error(t, err)
		classified, ok := foundation.AsClassified(err)
		require.True(t, ok)
		assert.Equal(t, foundation.CategoryToolMissing, classified.Category())
		assert.True(t, classified.IsFatal())
		missing, _ := classified.Context().GetString("tools")
		assert.Equal(t, "doxygen,breathe-apidoc,sphinx-build", missing)
	})
}

func TestResolve(t *testing.T) {
	lookPath := fakeLookPath(map[string]string{"cmake": "/usr/bin/cmake"})

	p, err := Resolve(ToolCMake, config.ToolsConfig{}, lookPath)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/cmake", p)

	_, err = Resolve(ToolCMake, config.ToolsConfig{CMake: "/opt/cmake/bin/cmake"}, lookPath)
	require.Error(t, err)
	assert.True(t, foundation.HasCategory(err, foundation.CategoryToolMissing))

	_, err = Resolve(ToolDoxygen, config.ToolsConfig{}, lookPath)
	require.Error(t, err)
}
