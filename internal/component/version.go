package component

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// VersionHeader is the core header declaring the SDK version.
const VersionHeader = "include/aws/core/VersionConfig.h"

var versionDefine = regexp.MustCompile(`^\s*#define\s+AWS_SDK_VERSION_(MAJOR|MINOR|PATCH)\s+(\d+)`)

// ReadSDKVersion parses major.minor.patch from the core component's version header.
func ReadSDKVersion(root string, core Component) (string, error) {
	path := filepath.Join(core.SourcePath(root), filepath.FromSlash(VersionHeader))
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "cannot read SDK version header").
			Fatal().WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()

	parts := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := versionDefine.FindStringSubmatch(scanner.Text()); m != nil {
			parts[m[1]] = m[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to scan SDK version header").
			Fatal().WithContext("path", path).Build()
	}

	for _, k := range []string{"MAJOR", "MINOR", "PATCH"} {
		if parts[k] == "" {
			return "", errors.ConfigError("SDK version header is incomplete").
				WithContext("path", path).WithContext("missing", "AWS_SDK_VERSION_"+k).Build()
		}
	}
	return fmt.Sprintf("%s.%s.%s", parts["MAJOR"], parts["MINOR"], parts["PATCH"]), nil
}
