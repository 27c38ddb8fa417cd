package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/messages"
	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

type fakeDocuments struct {
	docs []domain.Document
	err  error
}

func (f *fakeDocuments) List(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeDocuments) Get(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeDocuments) GetDetails(context.Context, string) (*driving.DocumentDetails, error) {
	return nil, domain.ErrNotFound
}

func loaded(t *testing.T, docs []domain.Document, filter []string) *View {
	t.Helper()
	v := NewView(nil, nil, &fakeDocuments{docs: docs})
	v.SetDimensions(80, 24)
	cmd := v.Open(filter)
	require.NotNil(t, cmd)
	v.Update(cmd())
	return v
}

var sample = []domain.Document{
	{ID: "a", Name: "a.txt", Extraction: domain.ExtractOK},
	{ID: "b", Name: "b.pdf", Extraction: domain.ExtractFailed},
	{ID: "c", Name: "c.md", Extraction: domain.ExtractWarning},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_LoadsAndRenders(t *testing.T) {
	v := loaded(t, sample, nil)

	assert.Len(t, v.Documents(), 3)
	view := v.View()
	assert.Contains(t, view, "Documents (3)")
	assert.Contains(t, view, "[ ] a.txt")
	assert.Contains(t, view, "b.pdf (failed)")
	assert.Contains(t, view, "c.md (warning)")
}

func TestView_ToggleAndConfirm(t *testing.T) {
	v := loaded(t, sample, nil)

	v.Update(key(" "))
	v.Update(key("down"))
	v.Update(key("down"))
	v.Update(key("x"))
	assert.Equal(t, []string{"a", "c"}, v.Chosen())
	assert.Contains(t, v.View(), "[x] a.txt")

	v.Update(key(" "))
	assert.Equal(t, []string{"a"}, v.Chosen())

	_, cmd := v.Update(key("enter"))
	assert.NotNil(t, cmd)
}

func TestView_OpenMarksExistingFilter(t *testing.T) {
	v := loaded(t, sample, []string{"b", "gone"})

	assert.Equal(t, []string{"b"}, v.Chosen())

	v.Update(key("a"))
	assert.Empty(t, v.Chosen())
}

func TestView_CursorBounds(t *testing.T) {
	v := loaded(t, sample, nil)

	v.Update(key("up"))
	assert.Equal(t, 0, v.SelectedIndex())

	for range 10 {
		v.Update(key("j"))
	}
	assert.Equal(t, 2, v.SelectedIndex())

	v.Update(key("k"))
	assert.Equal(t, 1, v.SelectedIndex())
}

func TestView_Back(t *testing.T) {
	v := loaded(t, sample, nil)

	_, cmd := v.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, nil, &fakeDocuments{err: errors.New("db closed")})
	v.Update(v.Open(nil)())

	assert.ErrorContains(t, v.Err(), "db closed")
	assert.Contains(t, v.View(), "db closed")

	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	msg := v.Open(nil)().(messages.DocumentsLoaded)

	assert.ErrorIs(t, msg.Err, ErrNoDocumentService)
}

func TestView_Empty(t *testing.T) {
	v := loaded(t, nil, nil)

	assert.Contains(t, v.View(), "No documents ingested yet.")
}
