package apidoc

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
)

// ModuleIndexFile is the per-component index written next to the fragments.
const ModuleIndexFile = "module.rst"

var listPages = []string{"classlist", "namespacelist", "structlist"}

// ModuleItems returns the list pages present in dir, without extension, sorted.
func ModuleItems(dir string) ([]string, error) {
	files, err := fsutil.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, f := range files {
		name := strings.TrimSuffix(f, ".rst")
		if slices.Contains(listPages, name) {
			items = append(items, name)
		}
	}
	slices.Sort(items)
	return items, nil
}

// WriteModuleIndex renders module.rst for comp from the list pages it has.
func (a *Assembler) WriteModuleIndex(comp component.Component) error {
	dir := a.Destination(comp)
	items, err := ModuleItems(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryApidoc, "failed to list fragments").
			WithContext("component", comp.Name).WithContext("path", dir).Build()
	}
	out, err := a.renderer.RenderModule(comp.Name, items)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, ModuleIndexFile)
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryApidoc, "failed to write module index").
			WithContext("component", comp.Name).WithContext("path", path).Build()
	}
	return nil
}
