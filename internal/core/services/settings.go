package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyIndexPath        = "index.path"
	keyIndexDims        = "index.dimensions"
	keyIndexTopK        = "index.top_k"
	keyIndexMaxContext  = "index.max_context_chars"
	keyChunkTarget      = "chunking.target_tokens"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyRetryMaxAttempts = "embedding.retry.max_attempts"
	keyRetryBaseDelay   = "embedding.retry.base_delay_ms"
	keyRetryMaxDelay    = "embedding.retry.max_delay_ms"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyServerAddr       = "server.addr"
)

// Environment overrides, applied after the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	envOpenAIKey         = "OPENAI_API_KEY"
	envOpenAIModel       = "OPENAI_MODEL"
	envOpenAIBaseURL     = "OPENAI_BASE_URL"
	envOllamaBaseURL     = "OLLAMA_BASE_URL"
	envChunkSize         = "CHUNK_SIZE_TOKENS"
	envIndexPath         = "CONTEXTIQ_INDEX_PATH"
	envEmbeddingProvider = "CONTEXTIQ_EMBEDDING_PROVIDER"
	envLLMProvider       = "CONTEXTIQ_LLM_PROVIDER"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
)

var settingKeys = map[string]keyKind{
	keyDataDir:          kindString,
	keyIndexPath:        kindString,
	keyIndexDims:        kindInt,
	keyIndexTopK:        kindInt,
	keyIndexMaxContext:  kindInt,
	keyChunkTarget:      kindInt,
	keyEmbedProvider:    kindProvider,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedRPS:         kindFloat,
	keyRetryMaxAttempts: kindInt,
	keyRetryBaseDelay:   kindInt,
	keyRetryMaxDelay:    kindInt,
	keyLLMProvider:      kindProvider,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
	keyLLMTemperature:   kindFloat,
	keyLLMMaxTokens:     kindInt,
	keyServerAddr:       kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// getenv supplies environment overrides; nil disables them.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		DataDir: s.getString(keyDataDir, filepath.Dir(s.configStore.Path())),
		Index: domain.IndexSettings{
			Path:            s.configStore.GetString(keyIndexPath),
			Dimensions:      s.getInt(keyIndexDims, defaults.Index.Dimensions),
			TopK:            s.getInt(keyIndexTopK, defaults.Index.TopK),
			MaxContextChars: s.getInt(keyIndexMaxContext, defaults.Index.MaxContextChars),
		},
		Chunking: domain.ChunkingSettings{
			TargetTokens: s.getInt(keyChunkTarget, defaults.Chunking.TargetTokens),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			Retry: domain.RetrySettings{
				MaxAttempts: s.getInt(keyRetryMaxAttempts, defaults.Embedding.Retry.MaxAttempts),
				BaseDelay:   s.getMillis(keyRetryBaseDelay, defaults.Embedding.Retry.BaseDelay),
				MaxDelay:    s.getMillis(keyRetryMaxDelay, defaults.Embedding.Retry.MaxDelay),
			},
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.configStore.GetString(keyLLMModel),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	s.applyEnvironment(settings)
	s.resolveDefaults(settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyEnvironment overlays environment variables on top of file settings.
func (s *SettingsService) applyEnvironment(settings *domain.Settings) {
	if v := s.getenv(envEmbeddingProvider); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
	}
	if v := s.getenv(envLLMProvider); v != "" {
		settings.LLM.Provider = domain.AIProvider(v)
	}
	if v := s.getenv(envOpenAIKey); v != "" {
		if settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = v
		}
		if settings.LLM.APIKey == "" {
			settings.LLM.APIKey = v
		}
	}
	if v := s.getenv(envOpenAIModel); v != "" && settings.LLM.Provider == domain.AIProviderOpenAI {
		settings.LLM.Model = v
	}
	if v := s.getenv(envOpenAIBaseURL); v != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = v
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = v
		}
	}
	if v := s.getenv(envOllamaBaseURL); v != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = v
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = v
		}
	}
	if v := s.getenv(envChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Chunking.TargetTokens = n
		}
	}
	if v := s.getenv(envIndexPath); v != "" {
		settings.Index.Path = v
	}
}

// resolveDefaults fills values that depend on other settings.
func (s *SettingsService) resolveDefaults(settings *domain.Settings) {
	if settings.Index.Path == "" {
		settings.Index.Path = filepath.Join(settings.DataDir, "index")
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	// A model with a known size wins over the generic default, unless set explicitly.
	if _, explicit := s.configStore.Get(keyIndexDims); !explicit {
		if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Index.Dimensions = dims
		}
	}
}

// Set stores a single setting, parsing it according to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		parsed = int64(n)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised config keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Millisecond
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
