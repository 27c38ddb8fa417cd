package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.NoError(t, svc.Close())
}

func TestNewEmbeddingService_UnknownModel(t *testing.T) {
	_, err := NewEmbeddingService(Config{Model: "custom"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	svc, err := NewEmbeddingService(Config{Model: "custom", Dimensions: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, svc.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	var prompts []string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		prompts = append(prompts, req.Prompt)

		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{float64(len(req.Prompt)), 1}})
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "abc"}, prompts)
	assert.Equal(t, [][]float32{{1, 1}, {3, 1}}, vecs)
}

func TestEmbed_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"model missing", http.StatusNotFound, domain.ErrProviderRejected},
		{"busy", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"crash", http.StatusInternalServerError, domain.ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.name, tt.status)
			})

			_, err := svc.Embed(context.Background(), "x")
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestEmbed_EmptyEmbedding(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	})

	_, err := svc.Embed(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	svc, err := NewEmbeddingService(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	require.ErrorIs(t, svc.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	})

	require.NoError(t, svc.Ping(context.Background()))
}
