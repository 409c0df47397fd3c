package navigation

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/layout"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
)

// BuildVolume assembles a component's volume: a copy of the main index whose
// placeholder for the component is replaced by its converted fragments.
// The fragments are moved out of full_doxy_index.
func BuildVolume(l layout.Layout, comp component.Component) error {
	fragments := filepath.Join(l.FullDoxyIndexDir(), string(comp.Group), comp.Name)
	if !fsutil.IsDir(fragments) {
		return errors.NewError(errors.CategoryNotFound, "no converted fragments for component").
			WithContext("component", comp.Name).WithContext("path", fragments).Build()
	}

	volume := filepath.Join(l.VolumesDir(), comp.Name)
	if err := os.RemoveAll(volume); err != nil {
		return volumeError(err, comp, volume)
	}
	if err := fsutil.CopyDir(l.MainIndexDir(), volume); err != nil {
		return volumeError(err, comp, volume)
	}
	if err := fsutil.Move(fragments, filepath.Join(volume, string(comp.Group), comp.Name)); err != nil {
		return volumeError(err, comp, volume)
	}
	return nil
}

func volumeError(err error, comp component.Component, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, "failed to build navigation volume").
		WithContext("component", comp.Name).WithContext("path", path).Build()
}

// BuildVolumes builds the volumes of comps concurrently on at most workers
// goroutines. One component's failure does not stop the others; the result
// maps each failed component to its error.
func BuildVolumes(ctx context.Context, l layout.Layout, comps []component.Component, workers int) map[string]error {
	if err := os.MkdirAll(l.VolumesDir(), 0o750); err != nil {
		failed := make(map[string]error, len(comps))
		for _, c := range comps {
			failed[c.Name] = volumeError(err, c, l.VolumesDir())
		}
		return failed
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]error)
		g      errgroup.Group
	)
	g.SetLimit(max(workers, 1))
	for _, comp := range comps {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = BuildVolume(l, comp)
			}
			if err != nil {
				slog.Warn("Navigation volume not built",
					logfields.Component(comp.Name), logfields.Error(err))
				mu.Lock()
				failed[comp.Name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
