package plaintext

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// NoTextReason is reported when a file holds no readable text.
const NoTextReason = "file contains no readable text"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-java",
		"text/x-c",
		"text/x-ruby",
		"text/x-shellscript",
		"text/x-sql",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/javascript",
		"text/css",
		"text/html",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract decodes content as text and cleans it.
func (e *Extractor) Extract(_ context.Context, _ string, content []byte) domain.ExtractResult {
	text := Clean(string(content))
	if text == "" {
		return domain.ExtractedWithWarning("", NoTextReason)
	}
	return domain.Extracted(text)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean drops invalid UTF-8, replaces control and other non-printable
// characters with spaces, collapses whitespace runs and trims the result.
func Clean(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
