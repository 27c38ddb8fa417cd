// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/components/input"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/components/status"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/components/transcript"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/keymap"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/messages"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/styles"
	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

// ErrNoRetrievalService is reported when the view has nothing to ask.
var ErrNoRetrievalService = errors.New("retrieval service not available")

// scrollStep is the number of transcript lines moved per key press.
const scrollStep = 3

// View is the chat view: transcript, question input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	documentIDs []string
	inFlight    int
	width       int
	height      int
	ready       bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.FilterChanged:
		v.SetDocumentFilter(msg.DocumentIDs)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Documents):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case keymap.Matches(key, v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(key, v.keymap.Clear):
		v.transcript.Clear()
		v.statusbar.Clear()
		return v, nil
	case keymap.Matches(key, v.keymap.Up):
		v.transcript.ScrollUp(scrollStep)
		return v, nil
	case keymap.Matches(key, v.keymap.Down):
		v.transcript.ScrollDown(scrollStep)
		return v, nil
	case keymap.Matches(key, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Reset()
		v.transcript.Ask(question)
		v.inFlight++
		v.statusbar.SetState(status.StateThinking)
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that answers question with the current filter.
func (v *View) ask(question string) tea.Cmd {
	ctx := v.ctx
	ids := append([]string(nil), v.documentIDs...)
	retrieval := v.retrieval
	return func() tea.Msg {
		if retrieval == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoRetrievalService}
		}
		answer, err := retrieval.Answer(ctx, question, domain.RetrieveOptions{DocumentIDs: ids})
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if !v.transcript.Resolve(msg.Question, msg.Answer, msg.Err) {
		return
	}
	if v.inFlight > 0 {
		v.inFlight--
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}
	if v.inFlight > 0 {
		return
	}
	v.statusbar.SetState(status.StateReady)
	n := 0
	if msg.Answer != nil {
		n = len(msg.Answer.Sources)
	}
	v.statusbar.SetMessage(fmt.Sprintf("%d sources", n))
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("context-iq"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// title, spacers, bordered input and status bar
	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// SetDocumentFilter restricts future questions to ids. Empty means all documents.
func (v *View) SetDocumentFilter(ids []string) {
	v.documentIDs = append([]string(nil), ids...)
	v.statusbar.SetFilterCount(len(ids))
}

// DocumentFilter returns the current document filter.
func (v *View) DocumentFilter() []string {
	return v.documentIDs
}

// Transcript returns the chat history.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Question returns the text currently typed.
func (v *View) Question() string {
	return v.input.Value()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
