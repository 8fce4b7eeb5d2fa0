// Package sources provides the source health view for the TUI.
package sources

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
)

// View lists every application with its configuration and connection status.
type View struct {
	styles        *styles.Styles
	searchService driving.SearchService
	ctx           context.Context

	statuses []domain.SourceStatus
	tested   bool
	loading  bool
	selected int
	width    int
	height   int
}

// NewView creates a new sources view.
func NewView(s *styles.Styles, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:        s,
		searchService: searchService,
		ctx:           context.Background(),
	}
}

// WithContext sets the context used for connection checks.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init lists the sources and starts a connection check.
func (v *View) Init() tea.Cmd {
	v.statuses = v.baseStatuses()
	v.tested = false
	return v.testConnections()
}

func (v *View) baseStatuses() []domain.SourceStatus {
	var configured []domain.AppSource
	if v.searchService != nil {
		configured = v.searchService.ConfiguredSources()
	}
	all := domain.AllSources()
	out := make([]domain.SourceStatus, len(all))
	for i, src := range all {
		out[i] = domain.SourceStatus{Source: src, Configured: slices.Contains(configured, src)}
	}
	return out
}

func (v *View) testConnections() tea.Cmd {
	if v.searchService == nil {
		return nil
	}
	v.loading = true
	svc, ctx := v.searchService, v.ctx
	return func() tea.Msg {
		return messages.ConnectionsTested{Status: svc.TestConnections(ctx)}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ConnectionsTested:
		v.loading = false
		v.tested = true
		for i := range v.statuses {
			v.statuses[i].Healthy = msg.Status[v.statuses[i].Source]
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.statuses)-1 {
				v.selected++
			}
		case "r":
			if !v.loading {
				return v, v.testConnections()
			}
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
		case "q":
			return v, func() tea.Msg { return messages.Quit{} }
		}
	}
	return v, nil
}

// View renders the sources view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Sources"))
	b.WriteString("\n\n")

	for i := range v.statuses {
		b.WriteString(v.renderStatus(i, v.statuses[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.loading {
		b.WriteString(v.styles.Muted.Render("Testing connections..."))
		b.WriteString("\n\n")
	}
	b.WriteString(v.styles.Help.Render("[r] retest  [esc] back  [q] quit"))
	return b.String()
}

func (v *View) renderStatus(index int, st domain.SourceStatus) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	var state string
	switch {
	case !st.Configured:
		state = v.styles.Muted.Render("not configured")
	case !v.tested:
		state = v.styles.Muted.Render("configured")
	case st.Healthy:
		state = v.styles.Success.Render("connected")
	default:
		state = v.styles.Error.Render("unreachable")
	}

	name := fmt.Sprintf("%-14s", st.Source.DisplayName())
	if index == v.selected {
		name = v.styles.Selected.Render(name)
	} else {
		name = v.styles.Normal.Render(name)
	}
	return indicator + name + " " + state
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Statuses returns the current status of every source.
func (v *View) Statuses() []domain.SourceStatus {
	return v.statuses
}

// Loading reports whether a connection check is running.
func (v *View) Loading() bool {
	return v.loading
}
