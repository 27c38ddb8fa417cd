package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// IndexSettings holds vector index and retrieval configuration.
type IndexSettings struct {
	// Path is the directory holding the vector file and chunk map.
	Path string

	// Dimensions is the embedding vector size. Fixed once the index has data.
	Dimensions int

	// TopK is the default number of chunks retrieved per query.
	TopK int

	// MaxContextChars bounds the context passed to the LLM.
	MaxContextChars int
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// TargetTokens is the per-chunk token budget.
	TargetTokens int
}

// RetrySettings holds the embedding retry policy.
type RetrySettings struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64

	// Retry is the retry policy for embedding calls.
	Retry RetrySettings
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Temperature controls sampling.
	Temperature float64

	// MaxTokens caps the answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings holds the HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	// DataDir holds the metadata database and, by default, the index.
	DataDir string

	Index     IndexSettings
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Server    ServerSettings
}

// DefaultSettings returns settings matching the OpenAI defaults.
// DataDir and Index.Path are left empty and resolved by the caller.
func DefaultSettings() Settings {
	return Settings{
		Index: IndexSettings{
			Dimensions:      1536,
			TopK:            4,
			MaxContextChars: 12000,
		},
		Chunking: ChunkingSettings{
			TargetTokens: 500,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    "text-embedding-3-small",
			Retry: RetrySettings{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    20 * time.Second,
			},
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   500,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if s.Index.Dimensions <= 0 {
		return fmt.Errorf("%w: index.dimensions must be positive", ErrInvalidInput)
	}
	if s.Index.TopK <= 0 {
		return fmt.Errorf("%w: index.top_k must be positive", ErrInvalidInput)
	}
	if s.Chunking.TargetTokens <= 0 {
		return fmt.Errorf("%w: chunking.target_tokens must be positive", ErrInvalidInput)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if s.Embedding.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: embedding.retry.max_attempts must be positive", ErrInvalidInput)
	}
	return nil
}

// AllProviders returns providers that support both embeddings and LLM calls.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
