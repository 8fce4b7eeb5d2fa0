// Package detail provides the artifact detail view for the TUI.
package detail

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
)

// headerLines is the space reserved above and below the viewport.
const headerLines = 6

// View shows a single artifact with scrollable content.
type View struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	statusbar     *status.Bar
	viewport      viewport.Model
	searchService driving.SearchService
	ctx           context.Context

	artifact *domain.Artifact
	loading  bool
	err      error

	width  int
	height int
}

// NewView creates a new detail view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateDetail)

	return &View{
		styles:        s,
		keymap:        km,
		statusbar:     bar,
		viewport:      viewport.New(80, 24-headerLines),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for refreshes.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetArtifact shows an artifact picked from the result list and refreshes
// it from its source.
func (v *View) SetArtifact(a domain.Artifact) tea.Cmd {
	v.artifact = &a
	v.err = nil
	v.render()
	v.viewport.GotoTop()

	if v.searchService == nil || a.ID == "" {
		return nil
	}
	v.loading = true
	v.statusbar.SetMessage("Refreshing from " + a.Source.DisplayName() + "...")

	svc, ctx, src, id := v.searchService, v.ctx, a.Source, a.ID
	return func() tea.Msg {
		fresh, err := svc.GetArtifact(ctx, src, id)
		return messages.ArtifactLoaded{Artifact: fresh, Err: err}
	}
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ArtifactLoaded:
		v.loading = false
		if msg.Err != nil || msg.Artifact == nil {
			// Keep the list copy; the source may be briefly unavailable.
			v.err = msg.Err
			v.statusbar.SetMessage("Showing cached result")
			return v, nil
		}
		v.artifact = msg.Artifact
		v.err = nil
		v.statusbar.SetMessage(msg.Artifact.Source.DisplayName() + " " + string(msg.Artifact.Type))
		v.render()
		return v, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
		case msg.String() == "q":
			return v, func() tea.Msg { return messages.Quit{} }
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the detail view.
func (v *View) View() string {
	if v.artifact == nil {
		return v.styles.Muted.Render("No artifact selected")
	}

	a := v.artifact
	header := v.styles.Title.Render(a.Title) + "  " + v.styles.SourceBadge(a.Source)
	sub := v.styles.Muted.Render(fmt.Sprintf("%s  #%s", a.Type, a.ID))
	if a.URL != "" {
		sub += v.styles.Muted.Render("  " + a.URL)
	}

	sections := []string{header, sub}
	if v.err != nil {
		sections = append(sections, v.styles.Warning.Render("Refresh failed: "+v.err.Error()))
	}
	sections = append(sections, "", v.viewport.View(), v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// render rebuilds the viewport body from the current artifact.
func (v *View) render() {
	if v.artifact == nil {
		v.viewport.SetContent("")
		return
	}
	a := v.artifact

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(max(v.width-2, 20)).Render(a.Content))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render("Details"))
	b.WriteString("\n")
	writeField(&b, v.styles, "Created", formatTime(a.CreatedAt))
	writeField(&b, v.styles, "Updated", formatTime(a.UpdatedAt))

	keys := make([]string, 0, len(a.Metadata))
	for k := range a.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		writeField(&b, v.styles, k, formatValue(a.Metadata[k]))
	}

	v.viewport.SetContent(b.String())
}

func writeField(b *strings.Builder, s *styles.Styles, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(s.Label.Render(fmt.Sprintf("  %-14s", label)))
	b.WriteString(value)
	b.WriteString("\n")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04 MST")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-headerLines, 3)
	v.statusbar.SetWidth(width)
	v.render()
}

// Artifact returns the artifact being shown.
func (v *View) Artifact() *domain.Artifact {
	return v.artifact
}

// Loading reports whether a refresh is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last refresh error.
func (v *View) Err() error {
	return v.err
}
