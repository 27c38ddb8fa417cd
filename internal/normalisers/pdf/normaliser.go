package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/normalisers/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MinTextLength is the cleaned length below which a PDF is treated as
// having little extractable text.
const MinTextLength = 50

// LimitedTextReason is reported when a PDF yields less than MinTextLength characters.
const LimitedTextReason = "limited text could be extracted from this PDF; " +
	"it may contain mostly images, be scanned or have complex formatting"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: " + InstallInstructions())

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents through poppler's pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor
}

// Extract converts the PDF to text and cleans it.
func (e *Extractor) Extract(ctx context.Context, _ string, content []byte) domain.ExtractResult {
	tmp, err := os.CreateTemp("", "contextiq-*.pdf")
	if err != nil {
		return domain.ExtractionFailed(fmt.Sprintf("could not stage PDF: %v", err))
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return domain.ExtractionFailed(fmt.Sprintf("could not stage PDF: %v", err))
	}

	// "-" sends the text to stdout.
	output, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return domain.ExtractionFailed(fmt.Sprintf("pdftotext failed: %v", err))
	}

	text := plaintext.Clean(string(output))
	if len(text) < MinTextLength {
		// A few stray characters are not worth indexing.
		return domain.ExtractedWithWarning("", LimitedTextReason)
	}
	return domain.Extracted(text)
}

// InstallInstructions returns how to install pdftotext on common platforms.
func InstallInstructions() string {
	return "install poppler (macOS: brew install poppler, Debian/Ubuntu: apt install poppler-utils)"
}
