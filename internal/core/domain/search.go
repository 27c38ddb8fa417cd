package domain

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// K is the number of nearest chunks to fetch from the index.
	// Zero uses the configured default.
	K int

	// DocumentIDs restricts results to these documents.
	// The filter is applied after the index search.
	DocumentIDs []string
}

// SourceChunk is a single retrieval hit.
type SourceChunk struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID identifies the owning document.
	DocumentID string

	// DocumentName is the owning document's filename.
	DocumentName string

	// Text is the chunk content.
	Text string

	// Distance is the squared Euclidean distance to the query. Lower is closer.
	Distance float32
}

// Source attributes part of an answer to a chunk.
type Source struct {
	ChunkID      string `json:"chunk_id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Snippet      string `json:"snippet"`
}

// Answer is a generated answer with its sources.
type Answer struct {
	// Text is the model's answer, a canned message, or an "[Error: ...]" marker.
	Text string `json:"answer"`

	// Sources lists the chunks the answer was built from.
	Sources []Source `json:"sources"`
}
