package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

const (
	uriScheme    = "contextiq://"
	documentsURI = uriScheme + "documents"
	jsonMIME     = "application/json"
)

type documentEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MIMEType   string `json:"mime_type"`
	Extraction string `json:"extraction"`
}

type chunkEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

type documentDetail struct {
	documentEntry
	Note   string       `json:"extraction_note,omitempty"`
	Chunks []chunkEntry `json:"chunks"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "All ingested documents",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document",
		Description: "A document with its chunks in order",
		MIMEType:    jsonMIME,
	}, s.handleDocumentResource)
}

func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries := []documentEntry{}
	if s.ports.Documents != nil {
		docs, err := s.ports.Documents.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for i := range docs {
			entries = append(entries, toEntry(&docs[i]))
		}
	}
	return jsonResult(req.Params.URI, entries)
}

func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	details, err := s.ports.Documents.GetDetails(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}

	out := documentDetail{
		documentEntry: toEntry(&details.Document),
		Note:          details.Document.ExtractionNote,
		Chunks:        make([]chunkEntry, 0, len(details.Chunks)),
	}
	for _, c := range details.Chunks {
		out.Chunks = append(out.Chunks, chunkEntry{ID: c.ID, Position: c.Position, Text: c.Text})
	}
	return jsonResult(req.Params.URI, out)
}

func toEntry(d *domain.Document) documentEntry {
	return documentEntry{
		ID:         d.ID,
		Name:       d.Name,
		MIMEType:   d.MIMEType,
		Extraction: d.Extraction.String(),
	}
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the ID from contextiq://documents/{documentId}.
func extractDocumentID(uri string) string {
	rest, ok := strings.CutPrefix(uri, documentsURI+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
