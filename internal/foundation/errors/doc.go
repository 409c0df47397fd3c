// Package errors provides the classified error primitives used across sdkdocs.
//
// Every failure the pipeline can report is a ClassifiedError carrying a category
// (which part of the pipeline failed), a severity (whether the run must stop) and
// structured context (component, tool, path).
//
// Key features:
//   - ErrorCategory: tool_missing, version_mismatch, graph_extraction, extraction, merge, ...
//   - ErrorSeverity: fatal, error, warning, info
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit code mapping and user-facing formatting
//
// Example usage:
//
//	err := errors.ExtractionError("doxygen failed").
//		WithContext("component", name).
//		WithCause(runErr).
//		Build()
//
// There is no retry classification: nothing in the pipeline retries.
package errors
