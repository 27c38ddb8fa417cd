package driving

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// DocumentService exposes ingested documents.
type DocumentService interface {
	// List returns all documents, oldest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetDetails returns a document with its chunks.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)
}

// DocumentDetails is a document together with its chunks in insertion order.
type DocumentDetails struct {
	Document domain.Document
	Chunks   []domain.Chunk
}
