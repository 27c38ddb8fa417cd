package driving

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// RetrievalService finds relevant chunks and answers questions from them.
type RetrievalService interface {
	// Retrieve returns the chunks nearest to the query, closest first.
	// An empty index yields an empty result, not an error.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.SourceChunk, error)

	// Answer retrieves context for the question and asks the language model.
	// A missing context or a failed model call still yields an Answer.
	Answer(ctx context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error)
}
