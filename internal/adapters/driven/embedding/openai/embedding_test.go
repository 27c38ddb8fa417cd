package openai

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

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

func newTestService(t *testing.T, handler http.HandlerFunc, cfg Config) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	cfg.BaseURL = server.URL
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "test_error"},
	})
}

func TestNewEmbeddingService_Validation(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewEmbeddingService(Config{APIKey: "k", Model: "mystery-model"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "mystery-model", Dimensions: 64})
	require.NoError(t, err)
	assert.Equal(t, 64, svc.Dimensions())
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
	assert.Nil(t, svc.bucket)
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var got embeddingsRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		// Deliberately out of order.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  got.Model,
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	}, Config{})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Zero(t, got.Dimensions)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestEmbedBatch_SendsDimensionOverride(t *testing.T) {
	var got embeddingsRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1, 2, 3}}},
		})
	}, Config{Dimensions: 3})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 3, got.Dimensions)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	}, Config{})

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{1}}},
		})
	}, Config{})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedBatch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"bad key", http.StatusUnauthorized, domain.ErrProviderRejected},
		{"bad request", http.StatusBadRequest, domain.ErrProviderRejected},
		{"server error", http.StatusInternalServerError, domain.ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tt.status, tt.name)
			}, Config{})

			_, err := svc.EmbedBatch(context.Background(), []string{"x"})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEmbedBatch_CancelledContext(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "unreachable")
	}, Config{RequestsPerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedBatch(ctx, []string{"x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			writeError(w, http.StatusNotFound, "unexpected path")
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			writeError(w, http.StatusUnauthorized, "bad key")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []any{}})
	}, Config{})
	require.NoError(t, svc.Ping(context.Background()))

	rejected := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "bad key")
	}, Config{})
	require.ErrorIs(t, rejected.Ping(context.Background()), domain.ErrProviderRejected)
}
