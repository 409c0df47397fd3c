// Package doxygen drives the documentation extraction tool for one component
// at a time.
package doxygen

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/toolchain"
)

// Minimum supported extraction tool release.
const (
	RequiredMajor = 1
	MinimumMinor  = 9
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// CheckVersion runs "<doxygen> --version" and returns the reported version.
// Anything other than 1.x with x >= 9 is a VersionMismatchError.
func CheckVersion(ctx context.Context, runner toolchain.Runner, path string) (string, error) {
	res, err := runner.Run(ctx, toolchain.Command{
		Tool: toolchain.ToolDoxygen,
		Path: path,
		Args: []string{"--version"},
	})
	if err != nil {
		return "", errors.VersionMismatchError("cannot determine extraction tool version").
			WithCause(err).WithContext("output", res.Output()).Build()
	}

	raw := strings.ReplaceAll(string(res.Stdout), "\n", "")
	version := versionPattern.FindString(raw)
	if version == "" {
		return "", errors.VersionMismatchError("unrecognized extraction tool version").
			WithContext("output", raw).Build()
	}

	parts := strings.SplitN(version, ".", 3)
	major, _ := strconv.Atoi(parts[0])
	minor, _ := strconv.Atoi(parts[1])
	if major != RequiredMajor || minor < MinimumMinor {
		return "", errors.VersionMismatchError("invalid extraction tool version, expected 1.9 at least").
			WithContext("version", version).Build()
	}
	return version, nil
}
