// Package site drives the static-site generator once per component and
// merges the per-component output into the unified reference site.
package site
