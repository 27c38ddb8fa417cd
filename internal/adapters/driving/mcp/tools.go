package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// maxSearchLimit caps the number of chunks a single search may request.
const maxSearchLimit = 50

// SearchInput defines the input for the search tool.
type SearchInput struct {
	Query       string   `json:"query" jsonschema:"the text to find similar passages for"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of chunks to return, defaults to the configured top-k"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict results to these document IDs"`
}

// SearchOutput defines the output for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is a single matched chunk.
type SearchResultOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Text         string  `json:"text"`
	Distance     float32 `json:"distance"`
}

// AskInput defines the input for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the question to answer from the ingested documents"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"only use these document IDs as context"`
}

// AskOutput defines the output for the ask tool.
type AskOutput struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the document passages most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the ingested documents, citing the passages used",
	}, s.handleAsk)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit < 0 {
		limit = 0
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := s.ports.Retrieval.Retrieve(ctx, input.Query, domain.RetrieveOptions{
		K:           limit,
		DocumentIDs: input.DocumentIDs,
	})
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, 0, len(hits)),
		Count:   len(hits),
	}
	for _, h := range hits {
		output.Results = append(output.Results, SearchResultOutput{
			ChunkID:      h.ChunkID,
			DocumentID:   h.DocumentID,
			DocumentName: h.DocumentName,
			Text:         h.Text,
			Distance:     h.Distance,
		})
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Retrieval.Answer(ctx, input.Question, domain.RetrieveOptions{
		DocumentIDs: input.DocumentIDs,
	})
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("ask failed: %w", err)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	return nil, AskOutput{Answer: answer.Text, Sources: sources}, nil
}
