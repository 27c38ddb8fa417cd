package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matched chunks", func(t *testing.T) {
		retrieval := &mockRetrievalService{
			hits: []domain.SourceChunk{{
				ChunkID:      "c1",
				DocumentID:   "doc-1",
				DocumentName: "notes.txt",
				Text:         "The sky is blue.",
				Distance:     0.25,
			}},
		}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{
			Query:       "sky",
			Limit:       3,
			DocumentIDs: []string{"doc-1"},
		})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, SearchResultOutput{
			ChunkID:      "c1",
			DocumentID:   "doc-1",
			DocumentName: "notes.txt",
			Text:         "The sky is blue.",
			Distance:     0.25,
		}, output.Results[0])
		assert.Equal(t, "sky", retrieval.lastText)
		assert.Equal(t, 3, retrieval.lastOpts.K)
		assert.Equal(t, []string{"doc-1"}, retrieval.lastOpts.DocumentIDs)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "q", Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, maxSearchLimit, retrieval.lastOpts.K)
		assert.NotNil(t, output.Results)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q", Limit: -1})
		require.NoError(t, err)
		assert.Zero(t, retrieval.lastOpts.K)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: domain.ErrEmbeddingUnavailable}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "q"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		retrieval := &mockRetrievalService{answer: &domain.Answer{
			Text:    "Blue.",
			Sources: []domain.Source{{ChunkID: "c1", DocumentID: "doc-1", DocumentName: "notes.txt", Snippet: "The sky"}},
		}}
		server, err := NewServer(&Ports{Retrieval: retrieval})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "colour?", DocumentIDs: []string{"doc-1"}})

		require.NoError(t, err)
		assert.Equal(t, "Blue.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "c1", output.Sources[0].ChunkID)
		assert.Equal(t, []string{"doc-1"}, retrieval.lastOpts.DocumentIDs)
	})

	t.Run("nil sources become empty", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{answer: &domain.Answer{Text: "none"}}})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})
		require.NoError(t, err)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}
