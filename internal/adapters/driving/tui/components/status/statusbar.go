// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
	StateDetail    State = "detail"
)

// Bar displays search status and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	state   State
	message string
	spinner string

	total      int
	sources    int
	durationMS float64
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateSearching:
		return b.styles.Muted.Render(strings.TrimSpace(b.spinner + " Searching..."))
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		return b.styles.Normal.Render(fmt.Sprintf("%d artifacts from %d sources in %.0fms", b.total, b.sources, b.durationMS))
	case StateDetail, StateReady:
		if b.message != "" {
			return b.styles.Muted.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	switch b.state {
	case StateResults:
		bindings = b.keymap.ResultsHelp()
	case StateDetail:
		bindings = b.keymap.DetailHelp()
	case StateReady, StateSearching, StateError:
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetResult records the figures of a completed search and switches to StateResults.
func (b *Bar) SetResult(r *domain.SearchResult) {
	b.state = StateResults
	b.message = ""
	if r == nil {
		b.total, b.sources, b.durationMS = 0, 0, 0
		return
	}
	b.total = r.TotalResults
	b.sources = len(r.SourcesSearched)
	b.durationMS = r.SearchDurationMS
}

// SetError switches to StateError with the error text.
func (b *Bar) SetError(err error) {
	b.state = StateError
	b.message = ""
	if err != nil {
		b.message = err.Error()
	}
}

// SetSpinner sets the spinner frame shown while searching.
func (b *Bar) SetSpinner(frame string) {
	b.spinner = frame
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// Total returns the result count of the last search.
func (b *Bar) Total() int {
	return b.total
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the status bar to default state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.total, b.sources, b.durationMS = 0, 0, 0
}
