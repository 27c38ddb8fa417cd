package tui

import (
	"context"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

type mockRetrievalService struct {
	answer *domain.Answer
	err    error
}

func (m *mockRetrievalService) Retrieve(context.Context, string, domain.RetrieveOptions) ([]domain.SourceChunk, error) {
	return nil, m.err
}

func (m *mockRetrievalService) Answer(context.Context, string, domain.RetrieveOptions) (*domain.Answer, error) {
	return m.answer, m.err
}

type mockDocumentService struct {
	docs []domain.Document
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetDetails(context.Context, string) (*driving.DocumentDetails, error) {
	return nil, domain.ErrNotFound
}
