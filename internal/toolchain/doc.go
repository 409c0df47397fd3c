// Package toolchain locates and runs the external programs the pipeline drives:
// the extraction tool (doxygen), the graph exporter (cmake), the XML converter
// (breathe-apidoc) and the static-site generator (sphinx-build).
//
// Every module receives a Runner instead of calling os/exec directly, so tests
// replace the real tools with faketool.Runner.
package toolchain
