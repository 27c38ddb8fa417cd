// Package filesystem ingests files from a local directory as they change.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Watcher defaults.
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultMaxFileBytes = 50 << 20
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem: watcher is closed")

// ReportFunc is told the outcome of every ingestion attempt.
type ReportFunc func(path string, doc *domain.Document, err error)

// Watcher ingests files under a root directory on create and write.
// Hidden files and directories are skipped.
//
// Documents are never updated in place: each settled write to a file that
// was already ingested registers a new document next to the earlier ones.
type Watcher struct {
	root         string
	ingest       driving.IngestService
	debounce     time.Duration
	maxFileBytes int64
	report       ReportFunc

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	seen   map[string]string // path -> ID of the latest document ingested from it
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must be quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithMaxFileBytes skips files larger than n bytes.
func WithMaxFileBytes(n int64) Option {
	return func(w *Watcher) { w.maxFileBytes = n }
}

// WithReport registers a callback for ingestion outcomes.
func WithReport(fn ReportFunc) Option {
	return func(w *Watcher) { w.report = fn }
}

// NewWatcher creates a watcher for root that hands files to ingest.
func NewWatcher(root string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		root:         root,
		ingest:       ingest,
		debounce:     DefaultDebounce,
		maxFileBytes: DefaultMaxFileBytes,
		seen:         make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IngestExisting ingests every visible file already under root.
// It returns the number of files ingested successfully.
func (w *Watcher) IngestExisting(ctx context.Context) (int, error) {
	if err := w.checkRoot(); err != nil {
		return 0, err
	}

	var paths []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("watch: %s: %v", path, err)
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", w.root, err)
	}

	ingested := 0
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return ingested, err
		}
		if w.ingestFile(ctx, p) {
			ingested++
		}
	}
	return ingested, nil
}

// Watch blocks, ingesting changed files, until ctx is cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	if err := w.checkRoot(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	logger.Info("watching %s", w.root)

	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(path string) {
		if t, ok := timers[path]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if isHiddenPath(w.root, event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				// A new directory may already hold files.
				if err := w.addTree(fw, event.Name); err != nil {
					logger.Warn("watch: %v", err)
				}
				w.eachFile(event.Name, schedule)
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				schedule(event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case path := <-ready:
			// A timer reset after firing can deliver the same path twice.
			if _, ok := timers[path]; !ok {
				continue
			}
			delete(timers, path)
			w.ingestFile(ctx, path)
		}
	}
}

// Close stops a running Watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}

func (w *Watcher) checkRoot() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.root)
	}
	return nil
}

// addTree watches dir and every visible directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) eachFile(dir string, fn func(string)) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			fn(path)
		}
		return nil
	})
}

// ingestFile reads and ingests path, reporting the outcome.
// Files that vanished, are empty or too large are skipped silently.
func (w *Watcher) ingestFile(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if info.Size() == 0 {
		logger.Debug("watch: skipping empty %s", path)
		return false
	}
	if w.maxFileBytes > 0 && info.Size() > w.maxFileBytes {
		logger.Warn("watch: skipping %s: %d bytes exceeds limit", path, info.Size())
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.emit(path, nil, fmt.Errorf("read %s: %w", path, err))
		return false
	}

	doc, err := w.ingest.Ingest(ctx, filepath.Base(path), content)
	if err == nil {
		w.remember(path, doc.ID)
	}
	w.emit(path, doc, err)
	return err == nil
}

// remember records the document ingested from path and notes when it
// duplicates an earlier one.
func (w *Watcher) remember(path, docID string) {
	w.mu.Lock()
	prev, ok := w.seen[path]
	w.seen[path] = docID
	w.mu.Unlock()
	if ok {
		logger.Info("watch: %s changed; added new document %s, earlier document %s is kept", path, docID, prev)
	}
}

func (w *Watcher) emit(path string, doc *domain.Document, err error) {
	if err != nil {
		logger.Warn("watch: ingest %s: %v", path, err)
	} else {
		logger.Info("watch: ingested %s as %s", path, doc.ID)
	}
	if w.report != nil {
		w.report(path, doc, err)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isHidden reports whether a single path element is hidden. "." and ".." are not.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// isHiddenPath reports whether any element of path below root is hidden.
func isHiddenPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
