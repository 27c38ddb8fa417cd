package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

type fakeIngest struct {
	filename string
	content  []byte
	err      error
}

func (f *fakeIngest) Ingest(_ context.Context, filename string, content []byte) (*domain.Document, error) {
	f.filename, f.content = filename, content
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: "doc-1", Name: filename}, nil
}

type fakeRetrieval struct {
	question string
	opts     domain.RetrieveOptions
	answer   *domain.Answer
	err      error
}

func (f *fakeRetrieval) Retrieve(context.Context, string, domain.RetrieveOptions) ([]domain.SourceChunk, error) {
	return nil, f.err
}

func (f *fakeRetrieval) Answer(_ context.Context, q string, opts domain.RetrieveOptions) (*domain.Answer, error) {
	f.question, f.opts = q, opts
	return f.answer, f.err
}

type fakeDocuments struct {
	docs    []domain.Document
	details map[string]*driving.DocumentDetails
	err     error
}

func (f *fakeDocuments) List(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	d, err := f.GetDetails(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return &d.Document, nil
}

func (f *fakeDocuments) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

type fixture struct {
	ingest    *fakeIngest
	retrieval *fakeRetrieval
	documents *fakeDocuments
	handler   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		ingest:    &fakeIngest{},
		retrieval: &fakeRetrieval{answer: &domain.Answer{Text: "42", Sources: []domain.Source{}}},
		documents: &fakeDocuments{details: map[string]*driving.DocumentDetails{}},
	}
	f.handler = NewServer("", Services{
		Ingest:    f.ingest,
		Retrieval: f.retrieval,
		Documents: f.documents,
	}).Handler()
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	f := newFixture()

	rec := f.do(multipartUpload(t, "file", "notes.txt", "hello world"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DocumentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, DocumentResponse{ID: "doc-1", Name: "notes.txt"}, resp)
	assert.Equal(t, "notes.txt", f.ingest.filename)
	assert.Equal(t, "hello world", string(f.ingest.content))
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture()

	rec := f.do(multipartUpload(t, "other", "notes.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestUpload_EmbeddingUnavailable(t *testing.T) {
	f := newFixture()
	f.ingest.err = fmt.Errorf("ingest: %w", domain.ErrEmbeddingUnavailable)

	rec := f.do(multipartUpload(t, "file", "a.txt", "x"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListDocuments(t *testing.T) {
	f := newFixture()

	rec := f.do(httptest.NewRequest(http.MethodGet, "/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	f.documents.docs = []domain.Document{{ID: "a", Name: "a.txt"}, {ID: "b", Name: "b.pdf"}}
	rec = f.do(httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.JSONEq(t, `[{"id":"a","name":"a.txt"},{"id":"b","name":"b.pdf"}]`, rec.Body.String())
}

func TestGetDocument(t *testing.T) {
	f := newFixture()
	f.documents.details["a"] = &driving.DocumentDetails{
		Document: domain.Document{ID: "a", Name: "a.txt", MIMEType: "text/plain", Extraction: domain.ExtractOK},
		Chunks: []domain.Chunk{
			{ID: "c0", DocumentID: "a", Position: 0, Text: "First."},
			{ID: "c1", DocumentID: "a", Position: 1, Text: "Second."},
		},
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/documents/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": "a", "name": "a.txt", "mime_type": "text/plain", "extraction": "ok",
		"chunks": [{"id": "c0", "text": "First."}, {"id": "c1", "text": "Second."}]
	}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/documents/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Document not found"}`, rec.Body.String())
}

func TestQuery(t *testing.T) {
	f := newFixture()
	f.retrieval.answer = &domain.Answer{
		Text:    "Paris.",
		Sources: []domain.Source{{ChunkID: "c0", DocumentID: "a", DocumentName: "a.txt", Snippet: "Paris is..."}},
	}

	body := strings.NewReader(`{"question":"capital?","doc_ids":["a"]}`)
	rec := f.do(httptest.NewRequest(http.MethodPost, "/query", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Paris.","sources":[
		{"chunk_id":"c0","document_id":"a","document_name":"a.txt","snippet":"Paris is..."}
	]}`, rec.Body.String())
	assert.Equal(t, "capital?", f.retrieval.question)
	assert.Equal(t, []string{"a"}, f.retrieval.opts.DocumentIDs)
}

func TestQuery_BadRequests(t *testing.T) {
	f := newFixture()

	for _, body := range []string{`{"question":"   "}`, `{}`, `not json`} {
		rec := f.do(httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestQuery_InternalError(t *testing.T) {
	f := newFixture()
	f.retrieval.err = errors.New("disk on fire")

	rec := f.do(httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"q"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestCORS(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := f.do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/documents", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RunAndShutdown(t *testing.T) {
	f := newFixture()
	srv := NewServer("127.0.0.1:0", Services{Ingest: f.ingest, Retrieval: f.retrieval, Documents: f.documents})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		addr := srv.Addr()
		if strings.HasSuffix(addr, ":0") {
			return false
		}
		var err error
		resp, err = http.Get("http://" + addr + "/health") //nolint:noctx // test
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_StartTwice(t *testing.T) {
	srv := NewServer("127.0.0.1:0", Services{})
	require.NoError(t, srv.Start())
	defer srv.Stop()

	assert.Error(t, srv.Start())
}
