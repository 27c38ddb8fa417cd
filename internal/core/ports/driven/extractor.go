package driven

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// Extractor turns an uploaded file into text.
// Problems are reported through the tagged result, never as an error.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority breaks ties when several extractors handle a type. Higher wins.
	Priority() int

	// Extract reads the file content. filename carries the original extension.
	Extract(ctx context.Context, filename string, content []byte) domain.ExtractResult
}
