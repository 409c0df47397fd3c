package component

import (
	"os"
	"sort"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
)

// Catalog is the immutable set of components enumerated at startup.
type Catalog struct {
	core   Component
	byName map[string]Component
	groups map[Group][]Component
}

// NewCatalog builds a catalog from explicit name lists. Names are sorted per
// group; the core name is removed from libs.
func NewCatalog(core string, libs, clients []string) *Catalog {
	c := &Catalog{
		byName: make(map[string]Component),
		groups: make(map[Group][]Component),
	}
	c.core = newComponent(core, GroupCore)
	c.add(c.core)

	for _, group := range []struct {
		g     Group
		names []string
	}{{GroupLibs, libs}, {GroupClients, clients}} {
		names := append([]string(nil), group.names...)
		sort.Strings(names)
		for _, n := range names {
			if _, dup := c.byName[n]; dup {
				continue
			}
			c.add(newComponent(n, group.g))
		}
	}
	return c
}

func (c *Catalog) add(comp Component) {
	c.byName[comp.Name] = comp
	c.groups[comp.Group] = append(c.groups[comp.Group], comp)
}

// Enumerate lists src/ (libraries, plus the core) and generated/src/ (clients).
// A missing generated/src is tolerated; a missing core directory is not.
func Enumerate(l layout.Layout, core string) (*Catalog, error) {
	libRoot, clientRoot := l.SourceRoots()

	libs, err := listDirs(libRoot)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list library sources").
			Fatal().WithContext("path", libRoot).Build()
	}
	found := false
	for _, n := range libs {
		if n == core {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NewError(errors.CategoryNotFound, "core component source not found").
			Fatal().WithContext("component", core).WithContext("path", libRoot).Build()
	}

	clients, err := listDirs(clientRoot)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list client sources").
			Fatal().WithContext("path", clientRoot).Build()
	}
	return NewCatalog(core, libs, clients), nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Core returns the shared core component.
func (c *Catalog) Core() Component { return c.core }

// Get returns a known component.
func (c *Catalog) Get(name string) (Component, bool) {
	comp, ok := c.byName[name]
	return comp, ok
}

// Lookup returns the known component or, for names that only appear in the
// dependency map, a client component with the conventional paths.
func (c *Catalog) Lookup(name string) Component {
	if comp, ok := c.byName[name]; ok {
		return comp
	}
	return newComponent(name, GroupClients)
}

// Group returns the components of g, sorted by name.
func (c *Catalog) Group(g Group) []Component {
	return append([]Component(nil), c.groups[g]...)
}

// All returns every component in core, libs, clients order.
func (c *Catalog) All() []Component {
	var out []Component
	for _, g := range Groups {
		out = append(out, c.groups[g]...)
	}
	return out
}

// Names returns the names of the components of g.
func (c *Catalog) Names(g Group) []string {
	comps := c.groups[g]
	out := make([]string, len(comps))
	for i, comp := range comps {
		out[i] = comp.Name
	}
	return out
}

// Len reports the number of enumerated components.
func (c *Catalog) Len() int { return len(c.byName) }
