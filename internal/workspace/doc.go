// Package workspace manages the isolated site source tree built for each
// component.
//
// A tree is a copy of the shared template source with the component's
// navigation volume installed as its api/ directory. Trees are ephemeral by
// default and removed once the component's site is built; a persistent
// manager keeps them on disk for inspection.
package workspace
