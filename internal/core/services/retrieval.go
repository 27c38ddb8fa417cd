package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Answer texts returned instead of a model completion.
const (
	NoContextAnswer = "I couldn't find any relevant information to answer your question " +
		"based on the current documents and query."
	LLMErrorAnswer = "[Error: Could not generate an answer due to an LLM API issue.]"
)

// Prompt pieces sent to the language model.
const (
	SystemPrompt     = "You are a helpful assistant."
	ContextSeparator = "\n\n---\n\n"

	answerPrompt = `You are a helpful assistant that provides accurate information based on the given context.
If the information to answer the question is not in the context, say 'I don't have enough information to answer this question.'

Context:
---
%s
---

Question: %s

Answer:`
)

// SnippetLength is the number of characters of chunk text quoted in a source.
const SnippetLength = 200

// RetrievalConfig tunes retrieval and answer generation.
type RetrievalConfig struct {
	// TopK is the default number of chunks to retrieve.
	TopK int

	// MaxContextChars bounds the joined context. Zero means unbounded.
	MaxContextChars int

	// Temperature and MaxTokens are passed to the language model.
	Temperature float64
	MaxTokens   int
}

// DefaultRetrievalConfig returns the default retrieval settings.
func DefaultRetrievalConfig() RetrievalConfig {
	d := domain.DefaultSettings()
	return RetrievalConfig{
		TopK:            d.Index.TopK,
		MaxContextChars: d.Index.MaxContextChars,
		Temperature:     d.LLM.Temperature,
		MaxTokens:       d.LLM.MaxTokens,
	}
}

// RetrievalService finds the chunks nearest to a query and answers from them.
type RetrievalService struct {
	docStore driven.DocumentStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	cfg      RetrievalConfig
}

// NewRetrievalService creates a new retrieval service.
// The llm parameter is optional; without it every answer degrades to LLMErrorAnswer.
func NewRetrievalService(
	docStore driven.DocumentStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	cfg RetrievalConfig,
) *RetrievalService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultRetrievalConfig().TopK
	}
	return &RetrievalService{
		docStore: docStore,
		index:    index,
		embedder: embedder,
		llm:      llm,
		cfg:      cfg,
	}
}

// Retrieve returns the chunks nearest to query, closest first.
//
// Hits outside opts.DocumentIDs are dropped after the search, so a filter can
// return fewer than K chunks. Hits whose chunk or document is no longer in
// the metadata store are skipped.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrieveOptions,
) ([]domain.SourceChunk, error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("retrieve: %w: empty query", domain.ErrInvalidInput)
	}

	if s.index.Count() == 0 {
		logger.Debug("Index is empty, nothing to retrieve")
		return []domain.SourceChunk{}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("retrieve: %w", domain.ErrEmbeddingUnavailable)
	}

	k := opts.K
	if k <= 0 {
		k = s.cfg.TopK
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retrieve: embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("retrieve: embed query: got %d embeddings for 1 query", len(vectors))
	}

	hits, err := s.index.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: search: %w", err)
	}
	logger.Debug("Index returned %d hits (k=%d)", len(hits), k)

	var allowed map[string]struct{}
	if len(opts.DocumentIDs) > 0 {
		allowed = make(map[string]struct{}, len(opts.DocumentIDs))
		for _, id := range opts.DocumentIDs {
			allowed[id] = struct{}{}
		}
		logger.Debug("Document filter: %v", opts.DocumentIDs)
	}

	results := make([]domain.SourceChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("retrieve: chunk %s (local index %d) has no metadata, skipping", hit.ChunkID, hit.LocalIndex)
				continue
			}
			return nil, fmt.Errorf("retrieve: get chunk %s: %w", hit.ChunkID, err)
		}

		if allowed != nil {
			if _, ok := allowed[chunk.DocumentID]; !ok {
				continue
			}
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Warn("retrieve: document %s for chunk %s not found, skipping", chunk.DocumentID, chunk.ID)
				continue
			}
			return nil, fmt.Errorf("retrieve: get document %s: %w", chunk.DocumentID, err)
		}

		results = append(results, domain.SourceChunk{
			ChunkID:      chunk.ID,
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Text:         chunk.Text,
			Distance:     hit.Distance,
		})
	}

	// The index already ranks hits; this keeps the guarantee local.
	slices.SortStableFunc(results, func(a, b domain.SourceChunk) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	logger.Debug("Retrieved %d chunks", len(results))
	return results, nil
}

// Answer retrieves context for question and asks the language model once.
//
// With no relevant chunks it returns NoContextAnswer. A failed model call
// returns LLMErrorAnswer with the sources still attached; neither is an error.
func (s *RetrievalService) Answer(
	ctx context.Context, question string, opts domain.RetrieveOptions,
) (*domain.Answer, error) {
	chunks, err := s.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	logger.Section("Answer")
	if len(chunks) == 0 {
		logger.Debug("No relevant chunks, returning canned answer")
		return &domain.Answer{Text: NoContextAnswer, Sources: []domain.Source{}}, nil
	}

	used := s.contextChunks(chunks)
	prompt := BuildPrompt(strings.TrimSpace(question), used)
	logger.Debug("Prompt built from %d of %d chunks (%d chars)", len(used), len(chunks), len(prompt))

	answer := &domain.Answer{Sources: Sources(used)}

	if s.llm == nil {
		logger.Warn("answer: %v", domain.ErrLLMUnavailable)
		answer.Text = LLMErrorAnswer
		return answer, nil
	}

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		SystemPrompt: SystemPrompt,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	})
	if err != nil {
		logger.Warn("answer: language model call failed: %v", err)
		answer.Text = LLMErrorAnswer
		return answer, nil
	}

	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

// contextChunks keeps whole chunks, closest first, while the joined text
// stays within MaxContextChars. The closest chunk is always kept.
func (s *RetrievalService) contextChunks(chunks []domain.SourceChunk) []domain.SourceChunk {
	if s.cfg.MaxContextChars <= 0 || len(chunks) == 0 {
		return chunks
	}

	total := len(chunks[0].Text)
	n := 1
	for ; n < len(chunks); n++ {
		next := total + len(ContextSeparator) + len(chunks[n].Text)
		if next > s.cfg.MaxContextChars {
			break
		}
		total = next
	}
	return chunks[:n]
}

// BuildPrompt joins the chunk texts into the answer prompt for question.
func BuildPrompt(question string, chunks []domain.SourceChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return fmt.Sprintf(answerPrompt, strings.Join(texts, ContextSeparator), question)
}

// Sources converts retrieved chunks into answer sources with short snippets.
func Sources(chunks []domain.SourceChunk) []domain.Source {
	sources := make([]domain.Source, len(chunks))
	for i, c := range chunks {
		sources[i] = domain.Source{
			ChunkID:      c.ChunkID,
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			Snippet:      Snippet(c.Text),
		}
	}
	return sources
}

// Snippet returns the first SnippetLength characters of text, with "..."
// appended when text is longer.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength]) + "..."
}
