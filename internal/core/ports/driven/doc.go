// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Extractor: Turns uploaded bytes into text (tagged result, never an error)
//   - Chunker / Tokenizer: Splits text into token-bounded chunks
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Answers a prompt
//   - VectorIndex: Exact nearest-neighbour search paired with the chunk registry
//   - DocumentStore: Document and chunk metadata persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
