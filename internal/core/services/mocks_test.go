package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/vectorindex"
)

// keywordEmbedder embeds text as keyword counts, so related texts land close.
type keywordEmbedder struct {
	keywords []string
	err      error

	mu      sync.Mutex
	calls   int
	batches [][]string
	// short drops this many vectors from each batch response.
	short int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(e.keywords))
	for i, kw := range e.keywords {
		v[i] = float32(strings.Count(lower, kw))
	}
	return v
}

func (e *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts[:len(texts)-e.short] {
		out = append(out, e.vector(t))
	}
	return out, nil
}

func (e *keywordEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *keywordEmbedder) Dimensions() int              { return len(e.keywords) }
func (e *keywordEmbedder) ModelName() string            { return "keyword-embed" }
func (e *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (e *keywordEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService with testify expectations.
type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// wordTokenizer counts whitespace-separated words.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }
func (wordTokenizer) Name() string          { return "words" }

// stubExtractor returns a fixed result for every file.
type stubExtractor struct {
	result domain.ExtractResult
}

func (s stubExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }
func (s stubExtractor) Priority() int                { return 0 }
func (s stubExtractor) Extract(_ context.Context, _ string, _ []byte) domain.ExtractResult {
	return s.result
}

// failingIndex wraps a VectorIndex and injects errors.
type failingIndex struct {
	driven.VectorIndex
	addErr   error
	flushErr error
	flushes  int
}

func (f *failingIndex) Add(ctx context.Context, chunkID string, v []float32) (int, error) {
	if f.addErr != nil {
		return -1, f.addErr
	}
	return f.VectorIndex.Add(ctx, chunkID, v)
}

func (f *failingIndex) Flush(ctx context.Context) error {
	f.flushes++
	if f.flushErr != nil {
		return f.flushErr
	}
	return f.VectorIndex.Flush(ctx)
}

// openTestIndex opens an empty index in a temporary directory.
func openTestIndex(t *testing.T, dim int) *vectorindex.Service {
	t.Helper()
	idx, err := vectorindex.Open(t.TempDir(), dim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}
