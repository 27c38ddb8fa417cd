package driven

// Tokenizer counts tokens the way the embedding model does.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the encoding (e.g. "cl100k_base").
	Name() string
}

// Chunker splits text into bounded-size chunks for embedding.
type Chunker interface {
	// Chunk splits text into ordered chunks. Empty input yields no chunks.
	Chunk(text string) []string
}
