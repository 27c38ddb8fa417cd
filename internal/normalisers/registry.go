package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.Extractor = (*Registry)(nil)

// Registry dispatches extraction to the highest-priority extractor
// registered for an upload's MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(e driven.Extractor) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
	sort.SliceStable(r.extractors, func(i, j int) bool {
		return r.extractors[i].Priority() > r.extractors[j].Priority()
	})
}

// SupportedMIMETypes returns every MIME type some extractor handles, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// Priority returns the registry's own priority; it is never nested.
func (r *Registry) Priority() int {
	return 0
}

// Extract detects the MIME type of filename and extracts its text.
//
// Any text/* type without a dedicated extractor is read as plain text.
// Octet-stream uploads are read as plain text when the bytes look like
// text, and otherwise produce a warning with no text.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) domain.ExtractResult {
	mimeType := DetectMIMEType(filename)
	logger.Debug("extract: %s detected as %s", filename, mimeType)

	if e := r.lookup(mimeType); e != nil {
		return e.Extract(ctx, filename, content)
	}

	switch {
	case strings.HasPrefix(mimeType, "text/"):
		if e := r.lookup("text/plain"); e != nil {
			return e.Extract(ctx, filename, content)
		}
	case mimeType == OctetStream:
		if e := r.lookup("text/plain"); e != nil && looksLikeText(content) {
			return e.Extract(ctx, filename, content)
		}
		return domain.ExtractedWithWarning("", fmt.Sprintf(
			"file type is generic (%q) and text extraction failed; content might be binary or an unsupported format",
			mimeType))
	}

	return domain.ExtractionFailed(fmt.Sprintf(
		"cannot extract text from file with MIME type %s: %v", mimeType, domain.ErrUnsupportedFormat))
}

// lookup returns the highest-priority extractor for mimeType, or nil.
func (r *Registry) lookup(mimeType string) driven.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if t == mimeType {
				return e
			}
		}
	}
	return nil
}

// looksLikeText reports whether content is valid UTF-8 without NUL bytes.
func looksLikeText(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	for _, b := range content {
		if b == 0 {
			return false
		}
	}
	return true
}
