// Package layout names the fixed directory tree the pipeline reads and writes
// under the SDK root.
package layout

import "path/filepath"

// DoxygenOutputRel is the extraction output root relative to the SDK root.
const DoxygenOutputRel = "docs/build/doxygen"

// Layout resolves pipeline paths against an SDK root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at the absolute form of root.
func New(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: abs}, nil
}

// Path joins elements onto the SDK root.
func (l Layout) Path(elem ...string) string {
	return filepath.Join(append([]string{l.Root}, elem...)...)
}

// DoxygenOutput is the root of every component's extracted XML and tag files.
func (l Layout) DoxygenOutput() string { return l.Path(filepath.FromSlash(DoxygenOutputRel)) }

// SphinxDir is the working directory of the site generator.
func (l Layout) SphinxDir() string { return l.Path("docs", "sphinx") }

// SphinxSource is the shared template source tree.
func (l Layout) SphinxSource() string { return filepath.Join(l.SphinxDir(), "source") }

// ComponentSource is the isolated source tree built for one component.
func (l Layout) ComponentSource(component string) string {
	return filepath.Join(l.SphinxDir(), "source-"+component)
}

// APIDir holds the generated navigation while it is being assembled.
func (l Layout) APIDir() string { return filepath.Join(l.SphinxSource(), "api") }

// MainIndexDir holds the generic navigation skeleton.
func (l Layout) MainIndexDir() string { return filepath.Join(l.APIDir(), "main") }

// FullDoxyIndexDir holds the converted fragments of every component.
func (l Layout) FullDoxyIndexDir() string { return filepath.Join(l.APIDir(), "full_doxy_index") }

// VolumesDir holds one navigation volume per component.
func (l Layout) VolumesDir() string { return filepath.Join(l.APIDir(), "volumes") }

// StagedAPIDir is where APIDir is moved before site builds so that copies of
// the shared source tree do not carry every volume.
func (l Layout) StagedAPIDir() string { return filepath.Join(l.SphinxDir(), "api") }

// StagedVolume is one component's volume after staging.
func (l Layout) StagedVolume(component string) string {
	return filepath.Join(l.StagedAPIDir(), "volumes", component)
}

// TemplatesDir holds optional navigation template overrides.
func (l Layout) TemplatesDir() string { return filepath.Join(l.SphinxSource(), "rst_templates") }

// DoxygenConfigDir is passed to the extraction tool as DOXYGEN_CONFIG_DIR.
func (l Layout) DoxygenConfigDir() string {
	return filepath.Join(l.SphinxSource(), "doxygen", "config")
}

// DoxygenConfigFile is the fixed extraction configuration.
func (l Layout) DoxygenConfigFile() string {
	return filepath.Join(l.DoxygenConfigDir(), "Doxyfile-prj.cfg")
}

// BuildAllDir collects every component's site output.
func (l Layout) BuildAllDir() string { return l.Path("docs", "build", "ALL") }

// MergedDir is the unified site.
func (l Layout) MergedDir() string { return l.Path("docs", "build", "merged_docs") }

// ReportDir receives the build report.
func (l Layout) ReportDir() string { return l.Path("docs", "build") }

// DepsBuildDir is the scratch directory of the graph exporter.
func (l Layout) DepsBuildDir() string { return l.Path("tmp_deps_map_build") }

// SourceRoots returns the directories that enumerate libraries and generated clients.
func (l Layout) SourceRoots() (libs, clients string) {
	return l.Path("src"), l.Path("generated", "src")
}
