// Package transcript renders the question and answer history of a chat.
package transcript

import (
	"fmt"
	"strings"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/styles"
	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// Exchange is one question with its answer. Answer is nil while pending.
type Exchange struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// Pending reports whether the answer has not arrived yet.
func (e *Exchange) Pending() bool {
	return e.Answer == nil && e.Err == nil
}

// Transcript holds the chat history and renders its tail into a fixed height.
type Transcript struct {
	exchanges []Exchange
	styles    *styles.Styles
	width     int
	height    int
	// scroll counts lines hidden below the visible window.
	scroll int
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{styles: s, width: 80, height: 10}
}

// Ask appends a pending exchange and jumps to the bottom.
func (t *Transcript) Ask(question string) {
	t.exchanges = append(t.exchanges, Exchange{Question: question})
	t.scroll = 0
}

// Resolve fills in the most recent pending exchange for question.
// It returns false when no such exchange exists.
func (t *Transcript) Resolve(question string, answer *domain.Answer, err error) bool {
	for i := len(t.exchanges) - 1; i >= 0; i-- {
		e := &t.exchanges[i]
		if e.Pending() && e.Question == question {
			e.Answer, e.Err = answer, err
			t.scroll = 0
			return true
		}
	}
	return false
}

// Exchanges returns the history, oldest first.
func (t *Transcript) Exchanges() []Exchange {
	return t.exchanges
}

// Clear empties the history.
func (t *Transcript) Clear() {
	t.exchanges = nil
	t.scroll = 0
}

// ScrollUp moves the window n lines towards older messages.
func (t *Transcript) ScrollUp(n int) {
	maxScroll := len(t.lines()) - t.height
	if maxScroll < 0 {
		maxScroll = 0
	}
	t.scroll = min(t.scroll+n, maxScroll)
}

// ScrollDown moves the window n lines towards newer messages.
func (t *Transcript) ScrollDown(n int) {
	t.scroll = max(t.scroll-n, 0)
}

// Scroll returns the number of lines hidden below the window.
func (t *Transcript) Scroll() int {
	return t.scroll
}

// SetDimensions sets the render area.
func (t *Transcript) SetDimensions(width, height int) {
	t.width = width
	t.height = max(height, 1)
}

// View renders the visible part of the history.
func (t *Transcript) View() string {
	if len(t.exchanges) == 0 {
		return t.styles.Muted.Render("No questions yet. Type one below and press enter.")
	}

	lines := t.lines()
	end := len(lines) - t.scroll
	start := max(end-t.height, 0)
	return strings.Join(lines[start:end], "\n")
}

func (t *Transcript) lines() []string {
	wrap := max(t.width-6, 20)
	var out []string
	for i := range t.exchanges {
		e := &t.exchanges[i]
		out = append(out, t.styles.Question.Render("> "+e.Question))

		switch {
		case e.Err != nil:
			out = append(out, t.styles.Error.Render("  Error: "+e.Err.Error()))
		case e.Pending():
			out = append(out, t.styles.Muted.Render("  ..."))
		default:
			for _, l := range strings.Split(Wrap(e.Answer.Text, wrap), "\n") {
				out = append(out, t.styles.Answer.Render(l))
			}
			for n, src := range e.Answer.Sources {
				ref := fmt.Sprintf("[%d] %s: %s", n+1, src.DocumentName, src.Snippet)
				out = append(out, t.styles.Citation.Render(truncate(ref, wrap)))
			}
		}
		out = append(out, "")
	}
	return out
}

// Wrap breaks text at word boundaries so no line exceeds width runes.
// Existing newlines are kept. Words longer than width are left intact.
func Wrap(text string, width int) string {
	var b strings.Builder
	for i, para := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		col := 0
		for j, word := range strings.Fields(para) {
			n := len([]rune(word))
			if j > 0 {
				if col+1+n > width {
					b.WriteByte('\n')
					col = 0
				} else {
					b.WriteByte(' ')
					col++
				}
			}
			b.WriteString(word)
			col += n
		}
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
