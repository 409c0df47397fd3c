package navigation

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
)

var groupPages = map[component.Group]string{
	component.GroupCore:    TemplateCore,
	component.GroupLibs:    TemplateLibs,
	component.GroupClients: TemplateClients,
}

// GenerateMainIndex rewrites the generic navigation skeleton: the top-level
// index, one page per group and a placeholder module page per component.
func GenerateMainIndex(l layout.Layout, catalog *component.Catalog, r *Renderer) error {
	dir := l.MainIndexDir()
	if err := os.RemoveAll(dir); err != nil {
		return fsError(err, "failed to clear main index", dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fsError(err, "failed to create main index", dir)
	}

	if err := renderTo(r, TemplateIndex, PageData{}, filepath.Join(dir, "index.rst")); err != nil {
		return err
	}
	for _, g := range component.Groups {
		data := PageData{Group: string(g), Components: catalog.Names(g)}
		if err := renderTo(r, groupPages[g], data, filepath.Join(dir, string(g)+".rst")); err != nil {
			return err
		}
	}

	for _, comp := range catalog.All() {
		data := PageData{Group: string(comp.Group), Component: comp.Name}
		path := filepath.Join(dir, string(comp.Group), comp.Name, "module.rst")
		if err := renderTo(r, TemplateExtLink, data, path); err != nil {
			return err
		}
	}
	return nil
}

func renderTo(r *Renderer, name string, data PageData, path string) error {
	out, err := r.Render(name, data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fsError(err, "failed to create navigation directory", filepath.Dir(path))
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fsError(err, "failed to write navigation page", path)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, msg).Fatal().WithContext("path", path).Build()
}
