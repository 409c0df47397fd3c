// Package component enumerates the documentable units of the SDK and derives
// their paths and naming conventions.
package component

import (
	"path/filepath"
	"strings"
)

// Group classifies a component.
type Group string

const (
	GroupCore    Group = "core"
	GroupLibs    Group = "libs"
	GroupClients Group = "clients"
)

// Groups lists every group in navigation order.
var Groups = []Group{GroupCore, GroupLibs, GroupClients}

// DoxygenDir is the group's directory under docs/build/doxygen.
func (g Group) DoxygenDir() string {
	switch g {
	case GroupCore:
		return "sdk_core"
	case GroupLibs:
		return "sdk_libraries"
	default:
		return "generated"
	}
}

// Component is one documentable unit of the SDK. Paths are relative to the SDK root
// and use forward slashes.
type Component struct {
	Name      string
	Group     Group
	SourceDir string
	DocDir    string
}

func newComponent(name string, group Group) Component {
	src := "generated/src/" + name
	if group != GroupClients {
		src = "src/" + name
	}
	return Component{
		Name:      name,
		Group:     group,
		SourceDir: src,
		DocDir:    "docs/build/doxygen/" + group.DoxygenDir() + "/" + name,
	}
}

// SourcePath returns the absolute source directory under root.
func (c Component) SourcePath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.SourceDir))
}

// DocPath returns the absolute extraction output directory under root.
func (c Component) DocPath(root string) string {
	return filepath.Join(root, filepath.FromSlash(c.DocDir))
}

// ExportMacro derives the preprocessor definition that makes the component's
// export annotation visible to the extractor: with prefix "aws-cpp-sdk-",
// "aws-cpp-sdk-foo-bar" yields "AWS_FOOBAR_API=". Names without the prefix
// yield "".
func ExportMacro(name, prefix string) string {
	if prefix == "" || !strings.HasPrefix(name, prefix) {
		return ""
	}
	namespace, _, _ := strings.Cut(prefix, "-")
	stem := strings.ReplaceAll(strings.TrimPrefix(name, prefix), "-", "")
	return strings.ToUpper(namespace) + "_" + strings.ToUpper(stem) + "_API="
}
