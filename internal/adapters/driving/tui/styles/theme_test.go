package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[c], "duplicate accent %s", c)
		seen[c] = true
	}
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	assert.Equal(t, theme, NewStyles(theme).Theme())
	assert.NotNil(t, NewStyles(nil).Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Subtitle":   s.Subtitle,
		"Normal":     s.Normal,
		"Muted":      s.Muted,
		"Selected":   s.Selected,
		"Error":      s.Error,
		"Success":    s.Success,
		"Warning":    s.Warning,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
		"Help":       s.Help,
		"Border":     s.Border,
		"Question":   s.Question,
		"Answer":     s.Answer,
		"Citation":   s.Citation,
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, lipgloss.Style{}, style)
			assert.Contains(t, style.Render("some text"), "some text")
		})
	}
}
