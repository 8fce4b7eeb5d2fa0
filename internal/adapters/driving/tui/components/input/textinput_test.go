package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestNewSearchInput(t *testing.T) {
	in := NewSearchInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, domain.MaxQueryLength, in.textinput.CharLimit)
}

func TestSearchInput_TypingUpdatesValue(t *testing.T) {
	in := NewSearchInput(nil)

	for _, r := range "risk" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "risk", in.Value())
}

func TestSearchInput_Query_Trims(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("  insulin dosing risks  ")

	q := in.Query()

	assert.Equal(t, "insulin dosing risks", q.Query)
	assert.NoError(t, q.Validate())
}

func TestSearchInput_Query_BlankIsInvalid(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("   ")

	assert.ErrorIs(t, in.Query().Validate(), domain.ErrInvalidInput)
}

func TestSearchInput_FocusAndBlur(t *testing.T) {
	in := NewSearchInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestSearchInput_SetWidth(t *testing.T) {
	tests := []struct {
		width     int
		wantInput int
	}{
		{100, 90},
		{40, 30},
		{15, 20},
	}
	for _, tt := range tests {
		in := NewSearchInput(nil)
		in.SetWidth(tt.width)

		assert.Equal(t, tt.width, in.Width())
		assert.Equal(t, tt.wantInput, in.textinput.Width)
	}
}

func TestSearchInput_ResetAndView(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("figma wireframes")

	assert.Contains(t, in.View(), "Query")

	in.Reset()
	assert.Empty(t, in.Value())
}
