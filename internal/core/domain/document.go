package domain

import "time"

// Document is an uploaded file registered with the service.
// Documents are created once per ingestion and never modified afterwards.
type Document struct {
	// ID is the unique identifier.
	ID string

	// Name is the original filename, including its extension.
	Name string

	// MIMEType is the content type detected from the filename.
	MIMEType string

	// Extraction records how text extraction went.
	Extraction ExtractStatus

	// ExtractionNote holds the warning or failure reason, if any.
	ExtractionNote string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a bounded span of a document's extracted text.
type Chunk struct {
	// ID is the unique identifier.
	ID string

	// DocumentID references the owning document.
	DocumentID string

	// Position is the chunk's order within the document.
	Position int

	// Text is the chunk content.
	Text string
}
