package mcp

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

type mockRetrievalService struct {
	hits     []domain.SourceChunk
	answer   *domain.Answer
	err      error
	lastOpts domain.RetrieveOptions
	lastText string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, opts domain.RetrieveOptions) ([]domain.SourceChunk, error) {
	m.lastText, m.lastOpts = query, opts
	return m.hits, m.err
}

func (m *mockRetrievalService) Answer(_ context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error) {
	m.lastText, m.lastOpts = question, opts
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

type mockDocumentService struct {
	docs    []domain.Document
	details map[string]*driving.DocumentDetails
	err     error
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	d, err := m.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d.Document, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}
