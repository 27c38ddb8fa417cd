package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// DocumentResponse is returned by upload and list.
type DocumentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChunkResponse is a chunk inside DocumentDetailResponse.
type ChunkResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// DocumentDetailResponse is returned by GET /documents/{id}.
type DocumentDetailResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	MIMEType   string          `json:"mime_type"`
	Extraction string          `json:"extraction"`
	Note       string          `json:"extraction_note,omitempty"`
	Chunks     []ChunkResponse `json:"chunks"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string   `json:"question"`
	DocIDs   []string `json:"doc_ids"`
}

// errorResponse mirrors the {"detail": ...} body clients already expect.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	doc, err := s.services.Ingest.Ingest(r.Context(), header.Filename, content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{ID: doc.ID, Name: doc.Name})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.services.Documents.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentResponse{ID: d.ID, Name: d.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	details, err := s.services.Documents.GetDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	chunks := make([]ChunkResponse, 0, len(details.Chunks))
	for _, c := range details.Chunks {
		chunks = append(chunks, ChunkResponse{ID: c.ID, Text: c.Text})
	}
	writeJSON(w, http.StatusOK, DocumentDetailResponse{
		ID:         details.Document.ID,
		Name:       details.Document.Name,
		MIMEType:   details.Document.MIMEType,
		Extraction: details.Document.Extraction.String(),
		Note:       details.Document.ExtractionNote,
		Chunks:     chunks,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	answer, err := s.services.Retrieval.Answer(r.Context(), req.Question, domain.RetrieveOptions{
		DocumentIDs: req.DocIDs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// writeDomainError maps sentinel errors to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrProviderRejected):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response: %v", err)
	}
}
