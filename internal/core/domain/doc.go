// Package domain defines the core business entities for lexrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Fingerprint: Content identity of a source file
//   - TrackerRecord: Durable "this content was parsed" entry
//   - StagedDocument: Cleaned text plus metadata awaiting indexing
//   - Chunk: A retrievable unit derived from a staged document
//   - Collection: The named vector collection chunks are written to
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library and github.com/google/uuid
//   - Cannot Import: Any internal/ package, any external dependency
package domain
