package toolchain

import (
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/sdkdocs/internal/config"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
)

// Logical tool names.
const (
	ToolDoxygen = "doxygen"
	ToolCMake   = "cmake"
	ToolApidoc  = "breathe-apidoc"
	ToolSphinx  = "sphinx-build"
)

// Tools holds the resolved executables.
type Tools struct {
	Doxygen string
	CMake   string
	Apidoc  string
	Sphinx  string
}

// LookPathFunc resolves an executable name; exec.LookPath in production.
type LookPathFunc func(file string) (string, error)

// defaultNames lists the executable names tried for each tool, in order.
var defaultNames = map[string][]string{
	ToolDoxygen: {"doxygen"},
	ToolCMake:   {"cmake3", "cmake"},
	ToolApidoc:  {"breathe-apidoc"},
	ToolSphinx:  {"sphinx-build"},
}

func override(tool string, cfg config.ToolsConfig) string {
	switch tool {
	case ToolDoxygen:
		return cfg.Doxygen
	case ToolCMake:
		return cfg.CMake
	case ToolApidoc:
		return cfg.Apidoc
	case ToolSphinx:
		return cfg.Sphinx
	}
	return ""
}

func resolve(tool string, cfg config.ToolsConfig, lookPath LookPathFunc) (string, bool) {
	candidates := defaultNames[tool]
	if o := override(tool, cfg); o != "" {
		candidates = []string{o}
	}
	for _, c := range candidates {
		if p, err := lookPath(c); err == nil {
			return p, true
		}
	}
	return "", false
}

// Resolve locates a single tool, for commands that need only one executable.
func Resolve(tool string, cfg config.ToolsConfig, lookPath LookPathFunc) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	p, ok := resolve(tool, cfg, lookPath)
	if !ok {
		return "", errors.ToolMissingError("required executable is missing").
			WithContext("tools", tool).Build()
	}
	return p, nil
}

// Discover resolves every required executable once. Configured overrides take
// precedence over the default names. Any missing tool is a fatal ToolMissingError
// naming all of them.
func Discover(cfg config.ToolsConfig, lookPath LookPathFunc) (Tools, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var missing []string
	find := func(tool string) string {
		p, ok := resolve(tool, cfg, lookPath)
		if !ok {
			missing = append(missing, tool)
		}
		return p
	}
	tools := Tools{
		Doxygen: find(ToolDoxygen),
		CMake:   find(ToolCMake),
		Apidoc:  find(ToolApidoc),
		Sphinx:  find(ToolSphinx),
	}

	if len(missing) > 0 {
		return Tools{}, errors.ToolMissingError("required executable is missing").
			WithContext("tools", strings.Join(missing, ",")).Build()
	}
	return tools, nil
}
