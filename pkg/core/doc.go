// Package core holds the shared data model for the transpilation engine:
// the tagged error union used across all pipeline stages, the warning
// taxonomy, and source positions.
//
// Failure handling is a plain branch on Error.Kind rather than a type
// hierarchy, so callers (and tests) never need to catch concrete error
// types from lower layers.
package core
