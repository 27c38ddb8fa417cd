package pdf

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, execRunner{}, extractor.runner)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestExtract_WithMockRunner(t *testing.T) {
	text := "Quarterly report.\n\n\fRevenue grew   in every region this quarter."
	runner := &mockRunner{output: []byte(text)}

	result := NewWithRunner(runner).Extract(context.Background(), "report.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, domain.ExtractOK, result.Status)
	assert.Equal(t, "Quarterly report. Revenue grew in every region this quarter.", result.Text)
	assert.Equal(t, "pdftotext", runner.name)
	require.NotEmpty(t, runner.args)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
}

func TestExtract_LimitedText(t *testing.T) {
	runner := &mockRunner{output: []byte("Scanned page 1")}

	result := NewWithRunner(runner).Extract(context.Background(), "scan.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, domain.ExtractWarning, result.Status)
	assert.Empty(t, result.Text)
	assert.False(t, result.HasText())
	assert.Equal(t, LimitedTextReason, result.Reason)
}

func TestExtract_NoText(t *testing.T) {
	runner := &mockRunner{output: []byte("  \n\f ")}

	result := NewWithRunner(runner).Extract(context.Background(), "images.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, domain.ExtractWarning, result.Status)
	assert.False(t, result.HasText())
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}

	result := NewWithRunner(runner).Extract(context.Background(), "broken.pdf", []byte("garbage"))

	assert.Equal(t, domain.ExtractFailed, result.Status)
	assert.Contains(t, result.Reason, "pdftotext failed")
	assert.Contains(t, result.Reason, "crashed")
}

func TestExtract_ToolMissing(t *testing.T) {
	runner := &mockRunner{err: ErrPDFToolNotFound}

	result := NewWithRunner(runner).Extract(context.Background(), "doc.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, domain.ExtractFailed, result.Status)
	assert.Contains(t, result.Reason, "pdftotext not found")
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions(), "poppler")
}

// Integration test - only runs if pdftotext is available.
func TestExtract_Integration(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	result := New().Extract(context.Background(), "garbage.pdf", []byte(strings.Repeat("x", 64)))
	assert.Equal(t, domain.ExtractFailed, result.Status)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
