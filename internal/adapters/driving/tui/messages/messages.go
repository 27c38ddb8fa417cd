// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// AnswerReceived carries the result of a question back to the chat view.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// DocumentsLoaded carries the document list for the filter picker.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// FilterChanged is sent when the document filter is confirmed.
// An empty filter searches every document.
type FilterChanged struct {
	DocumentIDs []string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question input and transcript.
	ViewChat ViewType = iota
	// ViewDocuments is the document filter picker.
	ViewDocuments
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}
