// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/siddhantttt/context-iq/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/siddhantttt/context-iq/internal/adapters/driven/embedding/openai"
	"github.com/siddhantttt/context-iq/internal/adapters/driven/embedding/retry"
	ollamallm "github.com/siddhantttt/context-iq/internal/adapters/driven/llm/ollama"
	openaillm "github.com/siddhantttt/context-iq/internal/adapters/driven/llm/openai"
	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues; the affected service may be nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both services from settings. A provider that is not
// configured (for example OpenAI without a key) is left nil with a warning,
// so commands that never embed or generate still run. With validate set,
// each created service is pinged and failures are reported as warnings.
func Init(ctx context.Context, settings *domain.Settings, validate bool) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding, settings.Index.Dimensions)
	switch {
	case err != nil:
		return nil, err
	case embedder == nil:
		result.Warnings = append(result.Warnings, notConfigured("embedding", settings.Embedding.Provider))
	default:
		result.EmbeddingService = embedder
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Close()
		return nil, err
	case llm == nil:
		result.Warnings = append(result.Warnings, notConfigured("llm", settings.LLM.Provider))
	default:
		result.LLMService = llm
	}

	if validate {
		if result.EmbeddingService != nil {
			if err := ping(ctx, result.EmbeddingService.Ping); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"embedding service %s unreachable: %v", settings.Embedding.Provider, err))
			}
		}
		if result.LLMService != nil {
			if err := ping(ctx, result.LLMService.Ping); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"llm service %s unreachable: %v", settings.LLM.Provider, err))
			}
		}
	}

	return result, nil
}

func notConfigured(kind string, provider domain.AIProvider) string {
	if provider.RequiresAPIKey() {
		return fmt.Sprintf("%s provider %s has no API key; set OPENAI_API_KEY or %s.api_key", kind, provider, kind)
	}
	return fmt.Sprintf("%s provider %q is not configured", kind, provider)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// ValidateEmbeddingConfig creates an embedding service from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings, dimensions int) error {
	svc, err := CreateEmbeddingService(settings, dimensions)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: provider not configured", domain.ErrEmbeddingUnavailable)
	}
	defer svc.Close()

	if err := ping(ctx, svc.Ping); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig creates an LLM service from settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("%w: provider not configured", domain.ErrLLMUnavailable)
	}
	defer svc.Close()

	if err := ping(ctx, svc.Ping); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the embedding service for settings, wrapped
// in the configured retry policy. dimensions is the index dimension the
// vectors must match. Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, dimensions int) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		cfg := ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		}
		// Ollama cannot shorten vectors; trust the index only for unknown models.
		if _, known := domain.EmbeddingDimensions()[settings.Model]; !known {
			cfg.Dimensions = dimensions
		}
		svc, err = ollamaembed.NewEmbeddingService(cfg)

	case domain.AIProviderOpenAI:
		cfg := openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		}
		// Only ask the API to shorten vectors when the index expects a
		// size other than the model's native one.
		if native, ok := domain.EmbeddingDimensions()[settings.Model]; !ok || native != dimensions {
			cfg.Dimensions = dimensions
		}
		svc, err = openaiembed.NewEmbeddingService(cfg)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if dimensions > 0 && svc.Dimensions() != dimensions {
		svc.Close()
		return nil, fmt.Errorf("%w: model %s produces %d-dimensional vectors, index expects %d",
			domain.ErrDimensionMismatch, svc.ModelName(), svc.Dimensions(), dimensions)
	}

	return retry.Wrap(svc, retry.FromSettings(settings.Retry)), nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}
