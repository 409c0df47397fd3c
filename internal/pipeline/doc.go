// Package pipeline runs the documentation build as an ordered list of stages
// over a shared BuildState.
//
// A stage ends in one of four ways. Success and warnings let the run go on.
// A partial failure records the failed components and lets later stages work
// with the components that do have output; the run still fails. Fatal and
// canceled errors stop the run at once. The BuildReport is persisted in every
// case.
package pipeline
