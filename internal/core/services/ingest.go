package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// MIMEDetector maps a filename to its MIME type.
type MIMEDetector func(filename string) string

// IngestService turns uploaded files into indexed chunks.
type IngestService struct {
	detect    MIMEDetector
	extractor driven.Extractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	now       func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	detect MIMEDetector,
	extractor driven.Extractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	index driven.VectorIndex,
) *IngestService {
	return &IngestService{
		detect:    detect,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		docStore:  docStore,
		index:     index,
		now:       time.Now,
	}
}

// Ingest registers the file as a document and indexes its chunks.
//
// A file whose text cannot be extracted is still registered, with its
// extraction status recorded and no chunks. The index is flushed before
// Ingest returns successfully. When embedding or indexing fails the
// document stays registered but is marked failed with the cause as its note.
func (s *IngestService) Ingest(ctx context.Context, filename string, content []byte) (*domain.Document, error) {
	logger.Section("Ingest")

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("ingest: %w: empty filename", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("ingest: %w", domain.ErrEmbeddingUnavailable)
	}

	mimeType := s.detect(filename)
	logger.Debug("File: %s (%s, %d bytes)", filename, mimeType, len(content))

	result := s.extractor.Extract(ctx, filename, content)
	switch result.Status {
	case domain.ExtractWarning:
		logger.Warn("ingest: %s: %s", filename, result.Reason)
	case domain.ExtractFailed:
		logger.Warn("ingest: %s: extraction failed: %s", filename, result.Reason)
	}

	doc := &domain.Document{
		ID:             uuid.New().String(),
		Name:           filename,
		MIMEType:       mimeType,
		Extraction:     result.Status,
		ExtractionNote: result.Reason,
		CreatedAt:      s.now(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingest: save document: %w", err)
	}

	if !result.HasText() {
		logger.Debug("No text extracted, document %s has no chunks", doc.ID)
		return doc, nil
	}

	texts := s.chunker.Chunk(result.Text)
	logger.Debug("Chunked into %d chunks", len(texts))
	if len(texts) == 0 {
		return doc, nil
	}

	if err := s.indexChunks(ctx, doc, texts); err != nil {
		s.markFailed(ctx, doc, err)
		return nil, fmt.Errorf("ingest: %w", err)
	}

	logger.Info("Ingested %s: %d chunks (index holds %d vectors)", filename, len(texts), s.index.Count())
	return doc, nil
}

// indexChunks embeds texts and stores them as the chunks of doc.
func (s *IngestService) indexChunks(ctx context.Context, doc *domain.Document, texts []string) error {
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Position:   i,
			Text:       text,
		}
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	for i, chunk := range chunks {
		if _, err := s.index.Add(ctx, chunk.ID, vectors[i]); err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				err = fmt.Errorf("%w (index holds %d-dimensional vectors, embedding model %s)",
					err, s.index.Dimension(), s.embedder.ModelName())
			}
			return fmt.Errorf("index chunk %d: %w", i, err)
		}
	}

	if err := s.index.Flush(ctx); err != nil {
		return fmt.Errorf("flush index: %w", err)
	}
	return nil
}

// markFailed records that doc was registered but could not be indexed,
// so it does not show up as a healthy document in listings.
func (s *IngestService) markFailed(ctx context.Context, doc *domain.Document, cause error) {
	doc.Extraction = domain.ExtractFailed
	doc.ExtractionNote = "indexing failed: " + cause.Error()
	if err := s.docStore.SaveDocument(context.WithoutCancel(ctx), doc); err != nil {
		logger.Warn("ingest: recording failure for %s: %v", doc.ID, err)
	}
}
