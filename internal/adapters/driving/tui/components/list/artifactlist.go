// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/artifact-search/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// linesPerItem is the rendered height of one artifact: title, meta and preview.
const linesPerItem = 3

// ArtifactList displays ranked artifacts in a navigable list.
type ArtifactList struct {
	artifacts []domain.Artifact
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewArtifactList creates a new artifact list component.
func NewArtifactList(s *styles.Styles) *ArtifactList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ArtifactList{
		styles: s,
		width:  80,
		height: 12,
	}
}

// Init initialises the list.
func (l *ArtifactList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ArtifactList) Update(msg tea.Msg) (*ArtifactList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.artifacts) > 0 {
				l.selected = len(l.artifacts) - 1
			}
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *ArtifactList) View() string {
	if len(l.artifacts) == 0 {
		return l.styles.Muted.Render("No artifacts")
	}

	visible := (l.height - 2) / linesPerItem
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.artifacts))

	lines := make([]string, 0, end-start+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Artifacts (%d)", len(l.artifacts))), "")
	for i := start; i < end; i++ {
		lines = append(lines, l.renderArtifact(i, &l.artifacts[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *ArtifactList) renderArtifact(index int, a *domain.Artifact) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := a.Title
	if title == "" {
		title = "(untitled)"
	}
	title = domain.Truncate(title, max(l.width-24, 10))

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(indicator + title)
	} else {
		titleLine = l.styles.Normal.Render(indicator + title)
	}

	meta := "    " + l.styles.SourceBadge(a.Source) + " " + l.styles.Muted.Render(string(a.Type))
	if t, ok := a.EffectiveTime(); ok {
		meta += l.styles.Muted.Render("  " + t.Format("2006-01-02"))
	}

	preview := strings.Join(strings.Fields(a.Content), " ")
	preview = domain.Truncate(preview, max(l.width-10, 20))

	return titleLine + "\n" + meta + "\n" + l.styles.Muted.Render("    "+preview)
}

// SetArtifacts replaces the list contents and resets the selection.
func (l *ArtifactList) SetArtifacts(artifacts []domain.Artifact) {
	l.artifacts = artifacts
	l.selected = 0
}

// Artifacts returns the current artifacts.
func (l *ArtifactList) Artifacts() []domain.Artifact {
	return l.artifacts
}

// Selected returns the index of the selected artifact.
func (l *ArtifactList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index when it is in range.
func (l *ArtifactList) SetSelected(index int) {
	if index >= 0 && index < len(l.artifacts) {
		l.selected = index
	}
}

// SelectedArtifact returns the selected artifact, or nil if the list is empty.
func (l *ArtifactList) SelectedArtifact() *domain.Artifact {
	if l.selected < 0 || l.selected >= len(l.artifacts) {
		return nil
	}
	return &l.artifacts[l.selected]
}

// MoveUp moves selection up.
func (l *ArtifactList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ArtifactList) MoveDown() {
	if l.selected < len(l.artifacts)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ArtifactList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of artifacts.
func (l *ArtifactList) Count() int {
	return len(l.artifacts)
}

// IsEmpty returns whether the list is empty.
func (l *ArtifactList) IsEmpty() bool {
	return len(l.artifacts) == 0
}
