package driven

import "context"

// VectorIndex is the flat vector index paired with its chunk registry.
// Every stored vector maps to exactly one chunk ID, and the pair is
// persisted and loaded together.
type VectorIndex interface {
	// Add appends a vector and registers it against chunkID as one atomic
	// step. It returns the vector's local index. A cancelled context is
	// honoured only before the step begins.
	Add(ctx context.Context, chunkID string, embedding []float32) (int, error)

	// Search finds the k nearest vectors by squared Euclidean distance,
	// closest first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of stored vectors.
	Count() int

	// Dimension returns the fixed vector length.
	Dimension() int

	// Flush writes a full snapshot of the pair to disk.
	Flush(ctx context.Context) error

	// Close flushes and releases resources.
	Close() error
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// LocalIndex is the vector's append position in the index.
	LocalIndex int

	// ChunkID is the chunk registered for LocalIndex.
	ChunkID string

	// Distance is the squared Euclidean distance. Lower is closer.
	Distance float32
}
