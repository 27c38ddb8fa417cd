package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/logger"
)

type recordingIngest struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *recordingIngest) Ingest(_ context.Context, filename string, _ []byte) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.names = append(r.names, filename)
	return &domain.Document{ID: fmt.Sprintf("id-%s-%d", filename, len(r.names)), Name: filename}, nil
}

func (r *recordingIngest) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestExisting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")
	writeFile(t, filepath.Join(root, "sub", "b.md"), "# beta")
	writeFile(t, filepath.Join(root, ".hidden"), "secret")
	writeFile(t, filepath.Join(root, ".git", "config"), "[core]")
	writeFile(t, filepath.Join(root, "empty.txt"), "")

	ingest := &recordingIngest{}
	w := NewWatcher(root, ingest)

	n, err := w.IngestExisting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a.txt", "b.md"}, ingest.Names())
}

func TestIngestExisting_SkipsOversize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.txt"), "0123456789")
	writeFile(t, filepath.Join(root, "small.txt"), "01")

	ingest := &recordingIngest{}
	n, err := NewWatcher(root, ingest, WithMaxFileBytes(5)).IngestExisting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"small.txt"}, ingest.Names())
}

func TestIngestExisting_ReportsFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "alpha")

	ingest := &recordingIngest{err: domain.ErrEmbeddingUnavailable}
	var reported []error
	w := NewWatcher(root, ingest, WithReport(func(_ string, _ *domain.Document, err error) {
		reported = append(reported, err)
	}))

	n, err := w.IngestExisting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], domain.ErrEmbeddingUnavailable)
}

func TestWatch_InvalidRoot(t *testing.T) {
	ingest := &recordingIngest{}

	err := NewWatcher(filepath.Join(t.TempDir(), "missing"), ingest).Watch(context.Background())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "x")
	err = NewWatcher(file, ingest).Watch(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatch_IngestsNewFiles(t *testing.T) {
	root := t.TempDir()
	ingest := &recordingIngest{}
	w := NewWatcher(root, ingest, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(root, "new.txt"), "fresh")
	writeFile(t, filepath.Join(root, ".ignored"), "nope")

	require.Eventually(t, func() bool {
		return len(ingest.Names()) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"new.txt"}, ingest.Names())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestIngestFile_RepeatedWriteAddsDocument(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})

	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeFile(t, path, "first draft")

	ingest := &recordingIngest{}
	var ids []string
	w := NewWatcher(root, ingest, WithReport(func(_ string, doc *domain.Document, err error) {
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}))

	require.True(t, w.ingestFile(context.Background(), path))
	assert.NotContains(t, logs.String(), "changed")

	writeFile(t, path, "second draft")
	require.True(t, w.ingestFile(context.Background(), path))

	assert.Equal(t, []string{"notes.txt", "notes.txt"}, ingest.Names())
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.Contains(t, logs.String(), "notes.txt changed; added new document "+ids[1])
	assert.Contains(t, logs.String(), "earlier document "+ids[0]+" is kept")
}

func TestWatch_RewriteIngestsAgain(t *testing.T) {
	root := t.TempDir()
	ingest := &recordingIngest{}
	w := NewWatcher(root, ingest, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(root, "doc.txt")
	writeFile(t, path, "v1")
	require.Eventually(t, func() bool {
		return len(ingest.Names()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	writeFile(t, path, "v2")
	require.Eventually(t, func() bool {
		return len(ingest.Names()) == 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_Close(t *testing.T) {
	w := NewWatcher(t.TempDir(), &recordingIngest{})

	done := make(chan error, 1)
	go func() { done <- w.Watch(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		if err != nil {
			assert.True(t, errors.Is(err, ErrClosed))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after close")
	}

	assert.ErrorIs(t, w.Watch(context.Background()), ErrClosed)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".hidden", true},
		{".git", true},
		{"file.hidden", false},
		{".", false},
		{"..", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.name))
		})
	}
}

func TestIsHiddenPath(t *testing.T) {
	root := "/data"
	assert.True(t, isHiddenPath(root, "/data/.hidden"))
	assert.True(t, isHiddenPath(root, "/data/dir/.git/config"))
	assert.False(t, isHiddenPath(root, "/data/dir/file.txt"))
	assert.False(t, isHiddenPath(root, "/data"))
}
