package apidoc

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
	"git.home.luguber.info/inful/sdkdocs/internal/util/sets"
)

// CoreFragments collects the fragment file names found in the kind
// directories of every core module under dest.
func CoreFragments(dest string) (sets.Set[string], error) {
	core := sets.New[string]()
	coreDir := filepath.Join(dest, string(component.GroupCore))
	modules, err := fsutil.ListDirs(coreDir)
	if err != nil {
		return nil, err
	}
	for _, module := range modules {
		kinds, err := fsutil.ListDirs(filepath.Join(coreDir, module))
		if err != nil {
			return nil, err
		}
		for _, kind := range kinds {
			files, err := fsutil.ListFiles(filepath.Join(coreDir, module, kind))
			if err != nil {
				return nil, err
			}
			core.Add(files...)
		}
	}
	return core, nil
}

// Dedup removes, from every non-core module under dest, each fragment whose
// file name is also a core fragment. It returns the number of files removed.
func Dedup(dest string, logger *slog.Logger) (int, error) {
	core, err := CoreFragments(dest)
	if err != nil {
		return 0, dedupError(err, dest)
	}
	if core.Len() == 0 {
		return 0, nil
	}

	removed := 0
	for _, g := range component.Groups {
		if g == component.GroupCore {
			continue
		}
		groupDir := filepath.Join(dest, string(g))
		modules, err := fsutil.ListDirs(groupDir)
		if err != nil {
			return removed, dedupError(err, groupDir)
		}
		for _, module := range modules {
			n, err := dedupModule(filepath.Join(groupDir, module), core)
			removed += n
			if err != nil {
				return removed, dedupError(err, filepath.Join(groupDir, module))
			}
			if n > 0 {
				logger.Info("Removed duplicated core items", logfields.Component(module), logfields.Count(n))
			}
		}
	}
	return removed, nil
}

func dedupModule(dir string, core sets.Set[string]) (int, error) {
	kinds, err := fsutil.ListDirs(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, kind := range kinds {
		files, err := fsutil.ListFiles(filepath.Join(dir, kind))
		if err != nil {
			return removed, err
		}
		for _, f := range files {
			if !core.Has(f) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, kind, f)); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func dedupError(err error, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, "failed to deduplicate core fragments").
		Fatal().WithContext("path", path).Build()
}
