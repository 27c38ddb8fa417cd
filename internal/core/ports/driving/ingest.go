package driving

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// IngestService registers uploaded files and indexes their text.
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes the file.
	// Files whose text cannot be extracted are still registered, with no chunks.
	Ingest(ctx context.Context, filename string, content []byte) (*domain.Document, error)
}
