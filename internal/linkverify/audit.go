package linkverify

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/logfields"
)

// BrokenLink is an internal link whose target is missing.
type BrokenLink struct {
	Page   string `json:"page"` // relative to the site root
	URL    string `json:"url"`
	Tag    string `json:"tag"`
	Target string `json:"target"` // resolved path relative to the site root
}

// Report summarizes an audit.
type Report struct {
	Pages  int          `json:"pages"`
	Links  int          `json:"links"`
	Broken []BrokenLink `json:"broken,omitempty"`
}

// Auditor checks the internal links of a generated site.
type Auditor struct {
	Workers int
	Logger  *slog.Logger
}

// Audit parses every .html file under root and resolves each verifiable
// internal link against the file system. Unparsable pages are logged and
// skipped.
func (a *Auditor) Audit(ctx context.Context, root string) (*Report, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var pages []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".html") {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk site").
			WithContext("path", root).Build()
	}

	var (
		mu     sync.Mutex
		report = &Report{Pages: len(pages)}
		g      errgroup.Group
	)
	g.SetLimit(max(a.Workers, 1))
	for _, page := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			links, err := ExtractLinks(page)
			if err != nil {
				logger.Warn("Skipping unparsable page", logfields.Path(page), logfields.Error(err))
				return nil
			}
			checked, broken := checkPage(root, page, links)
			mu.Lock()
			report.Links += checked
			report.Broken = append(report.Broken, broken...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Broken, func(i, j int) bool {
		bi, bj := report.Broken[i], report.Broken[j]
		if bi.Page != bj.Page {
			return bi.Page < bj.Page
		}
		return bi.URL < bj.URL
	})
	return report, nil
}

func checkPage(root, page string, links []*Link) (int, []BrokenLink) {
	relPage, _ := filepath.Rel(root, page)
	checked := 0
	var broken []BrokenLink
	for _, link := range links {
		if !ShouldVerifyLink(link) {
			continue
		}
		target, ok := resolve(root, page, link.URL)
		if !ok {
			continue
		}
		checked++
		if targetExists(target) {
			continue
		}
		relTarget, _ := filepath.Rel(root, target)
		broken = append(broken, BrokenLink{
			Page:   filepath.ToSlash(relPage),
			URL:    link.URL,
			Tag:    link.Tag,
			Target: filepath.ToSlash(relTarget),
		})
	}
	return checked, broken
}

// resolve maps a link to a file path. Root-relative links resolve against the
// site root; links that only carry a query or fragment are not resolvable.
func resolve(root, page, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return "", false
	}
	p := filepath.FromSlash(u.Path)
	if strings.HasPrefix(u.Path, "/") {
		return filepath.Join(root, p), true
	}
	return filepath.Join(filepath.Dir(page), p), true
}

func targetExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err := os.Stat(filepath.Join(path, "index.html"))
		return err == nil
	}
	return true
}
