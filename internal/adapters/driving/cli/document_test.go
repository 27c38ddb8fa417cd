package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/core/domain"
)

func TestDocumentListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "scan.pdf")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentShowCmd_Use(t *testing.T) {
	assert.Equal(t, "show [doc-id]", documentShowCmd.Use)
}

func TestDocumentShowCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "document", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "show", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "text/plain")
	assert.Contains(t, out, "Chunks:     2")
	assert.NotContains(t, out, "Grass is green.")
}

func TestDocumentShowCmd_Chunks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "document", "show", "--chunks", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "--- [1] c2 ---")
	assert.Contains(t, out, "Grass is green.")
}

func TestDocumentShowCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "document", "show", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
