package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sdkdocs/internal/component"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/fsutil"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
)

// BuildMetadata lists the generator's internal files removed from the merged site.
var BuildMetadata = []string{".doctrees", "_sources", "objects.inv", ".buildinfo"}

// MergeResult summarizes a merge.
type MergeResult struct {
	Merged   []string
	Warnings map[string]error
}

// WarningList returns the warnings ordered by component.
func (r *MergeResult) WarningList() []error {
	names := make([]string, 0, len(r.Warnings))
	for n := range r.Warnings {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]error, len(names))
	for i, n := range names {
		out[i] = r.Warnings[n]
	}
	return out
}

// Merge rebuilds the merged site: the primary component's output verbatim
// minus build metadata, then the api/<group>/<component> subtree of every other
// component copied over its placeholder. A missing primary output is an
// error; problems with any other component are MergeWarnings.
func (d *Driver) Merge(ctx context.Context, primary component.Component, others []component.Component) (*MergeResult, error) {
	l := d.opts.Layout
	src, dst := l.BuildAllDir(), l.MergedDir()

	if err := os.RemoveAll(dst); err != nil {
		return nil, mergeError(err, "failed to clear merged site", dst)
	}
	primaryOut := filepath.Join(src, primary.Name)
	if !fsutil.IsDir(primaryOut) {
		return nil, errors.NewError(errors.CategoryMerge, "primary component has no site output").
			WithContext("component", primary.Name).WithContext("path", primaryOut).Build()
	}
	if err := fsutil.CopyDir(primaryOut, dst); err != nil {
		return nil, mergeError(err, "failed to copy primary site", primaryOut)
	}
	for _, name := range BuildMetadata {
		if err := os.RemoveAll(filepath.Join(dst, name)); err != nil {
			return nil, mergeError(err, "failed to remove build metadata", filepath.Join(dst, name))
		}
	}

	res := &MergeResult{Merged: []string{primary.Name}, Warnings: make(map[string]error)}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(max(d.opts.Workers, 1))
	for _, comp := range others {
		if comp.Name == primary.Name {
			continue
		}
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = d.mergeComponent(comp)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				w := errors.MergeWarning("failed to merge component").WithCause(err).
					WithContext("component", comp.Name).WithContext("group", string(comp.Group)).Build()
				d.logger.Warn("Failed to merge component",
					logfields.Component(comp.Name), logfields.Group(string(comp.Group)), logfields.Error(err))
				res.Warnings[comp.Name] = w
				return nil
			}
			res.Merged = append(res.Merged, comp.Name)
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(res.Merged[1:])

	d.logger.Info("Merged site", logfields.Path(dst),
		logfields.Count(len(res.Merged)), logfields.Workers(d.opts.Workers))
	return res, nil
}

func (d *Driver) mergeComponent(comp component.Component) error {
	l := d.opts.Layout
	rel := filepath.Join("api", string(comp.Group), comp.Name)
	from := filepath.Join(l.BuildAllDir(), comp.Name, rel)
	to := filepath.Join(l.MergedDir(), rel)

	if err := os.RemoveAll(to); err != nil {
		return err
	}
	if !fsutil.IsDir(from) {
		return fmt.Errorf("component output missing: %s", from)
	}
	return fsutil.CopyDir(from, to)
}

func mergeError(err error, msg, path string) error {
	return errors.WrapError(err, errors.CategoryMerge, msg).Fatal().WithContext("path", path).Build()
}
