// Package shared provides common utilities and test helpers used across the
// mfbench codebase.
//
// # Structure
//
//   - testutil: slog capture handler, log assertions and table fixtures
//
// # Usage Guidelines
//
// This package should only contain helpers used by several packages and
// holding no domain logic of its own.
package shared
