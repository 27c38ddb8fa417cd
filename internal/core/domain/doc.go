// Package domain defines the core business entities for context-iq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded file with its detected type and extraction outcome
//   - Chunk: A bounded span of a document's text, the unit of retrieval
//   - ExtractResult: The tagged outcome of text extraction
//   - SourceChunk / Answer: Retrieval and answer results
//   - Settings: Application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
