// Package domain defines the core business entities for caseforest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - SearchResult: A normalised search hit
//   - SearchResponseEnvelope: Normalised backend response
//   - BackendPayload: Raw backend response (typed or flat)
//   - QueryHistoryEntry: A recorded query with its use counter
//   - SearchOutcome: Everything a renderer needs for one query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library and protobuf well-known types. All other
// packages depend on domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, google.golang.org/protobuf/types/known
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
