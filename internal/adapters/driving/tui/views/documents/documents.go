// Package documents provides the document filter picker for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/components/status"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/keymap"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/messages"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/styles"
	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

// ErrNoDocumentService is reported when documents cannot be listed.
var ErrNoDocumentService = errors.New("document service not available")

// View lists documents and lets the user pick which ones the chat searches.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	statusbar       *status.Bar
	documentService driving.DocumentService
	ctx             context.Context

	documents    []domain.Document
	chosen       map[string]bool
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetState(status.StatePicking)

	return &View{
		styles:          s,
		keymap:          km,
		statusbar:       bar,
		documentService: documentService,
		ctx:             context.Background(),
		chosen:          map[string]bool{},
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open resets the cursor, marks the current filter and loads the documents.
func (v *View) Open(filter []string) tea.Cmd {
	v.chosen = make(map[string]bool, len(filter))
	for _, id := range filter {
		v.chosen[id] = true
	}
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	ctx := v.ctx
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			v.dropMissing()
		}
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, backToChat
	case keymap.Matches(key, v.keymap.Confirm):
		if v.loading || v.err != nil {
			// keep the current filter
			return v, backToChat
		}
		ids := v.Chosen()
		return v, tea.Sequence(
			func() tea.Msg { return messages.FilterChanged{DocumentIDs: ids} },
			backToChat,
		)
	case keymap.Matches(key, v.keymap.Up), key == "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Down), key == "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Toggle):
		if v.selected < len(v.documents) {
			id := v.documents[v.selected].ID
			if v.chosen[id] {
				delete(v.chosen, id)
			} else {
				v.chosen[id] = true
			}
		}
	case key == "a":
		v.chosen = map[string]bool{}
	}
	return v, nil
}

func backToChat() tea.Msg {
	return messages.ViewChanged{View: messages.ViewChat}
}

// dropMissing forgets chosen ids that no longer exist.
func (v *View) dropMissing() {
	present := make(map[string]bool, len(v.documents))
	for _, d := range v.documents {
		present[d.ID] = true
	}
	for id := range v.chosen {
		if !present[id] {
			delete(v.chosen, id)
		}
	}
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// title, spacing, scroll indicator and status bar
	return max(v.height-7, 1)
}

// View renders the picker.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents ingested yet."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1, end, len(v.documents))))
		}
	}

	b.WriteString("\n\n")
	v.statusbar.SetFilterCount(len(v.chosen))
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	box := "[ ]"
	if v.chosen[doc.ID] {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s", box, doc.Name)
	if doc.Extraction != domain.ExtractOK {
		line += " (" + doc.Extraction.String() + ")"
	}

	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	if doc.Extraction == domain.ExtractFailed {
		return v.styles.Muted.Render("  " + line)
	}
	return v.styles.Normal.Render("  " + line)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.statusbar.SetWidth(width)
}

// Chosen returns the picked document ids in list order.
func (v *View) Chosen() []string {
	ids := make([]string, 0, len(v.chosen))
	for _, d := range v.documents {
		if v.chosen[d.ID] {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
