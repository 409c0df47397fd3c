package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
)

// Manager creates component source trees next to the shared source.
type Manager struct {
	sharedSource string
	baseDir      string
	persistent   bool // If true, Cleanup leaves trees on disk
}

// NewManager returns a manager whose trees are removed on Cleanup.
func NewManager(sharedSource string) *Manager {
	return &Manager{sharedSource: sharedSource, baseDir: filepath.Dir(sharedSource)}
}

// NewPersistentManager returns a manager whose trees survive Cleanup.
func NewPersistentManager(sharedSource string) *Manager {
	m := NewManager(sharedSource)
	m.persistent = true
	return m
}

// Tree is one component's isolated source tree.
type Tree struct {
	manager   *Manager
	component string
	path      string
}

// TreePath returns the location of component's tree: source-<component>
// beside the shared source.
func (m *Manager) TreePath(component string) string {
	return filepath.Join(m.baseDir, "source-"+component)
}

// Create replaces any previous tree of component with a fresh copy of the
// shared source and installs volume as its api directory.
func (m *Manager) Create(component, volume string) (*Tree, error) {
	path := m.TreePath(component)
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to clear source tree: %w", err)
	}
	if err := fsutil.CopyDir(m.sharedSource, path); err != nil {
		return nil, fmt.Errorf("failed to copy shared source: %w", err)
	}

	api := filepath.Join(path, "api")
	if err := os.RemoveAll(api); err != nil {
		return nil, fmt.Errorf("failed to clear api directory: %w", err)
	}
	if err := fsutil.CopyDir(volume, api); err != nil {
		return nil, fmt.Errorf("failed to install navigation volume: %w", err)
	}

	slog.Debug("Created component source tree", logfields.Component(component), logfields.Path(path))
	return &Tree{manager: m, component: component, path: path}, nil
}

// Path returns the tree's directory.
func (t *Tree) Path() string { return t.path }

// RelPath returns the tree's directory relative to the site generator's
// working directory, in the "./source-<component>" form.
func (t *Tree) RelPath() string { return "./" + filepath.Base(t.path) }

// Cleanup removes the tree unless the manager is persistent.
func (t *Tree) Cleanup() error {
	if t.manager.persistent {
		slog.Debug("Keeping component source tree", logfields.Component(t.component), logfields.Path(t.path))
		return nil
	}
	if err := os.RemoveAll(t.path); err != nil {
		return fmt.Errorf("failed to cleanup source tree: %w", err)
	}
	return nil
}
