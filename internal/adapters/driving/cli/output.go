package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// previewLength caps the content snippet printed per search hit.
const previewLength = 150

// printer writes command output, styled only when the writer is a terminal.
type printer struct {
	w      io.Writer
	styled bool

	title lipgloss.Style
	muted lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	label lipgloss.Style
}

func newPrinter(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &printer{
		w:      w,
		styled: styled,
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

// json writes v as indented JSON.
func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// searchResult prints the summary followed by each artifact.
func (p *printer) searchResult(r *domain.SearchResult) {
	if r.Summary != "" {
		p.println(r.Summary)
		p.println()
	}

	p.println(p.render(p.muted, fmt.Sprintf("%d artifacts from %s in %.0fms",
		r.TotalResults, sourceNames(r.SourcesSearched), r.SearchDurationMS)))
	if len(r.Artifacts) == 0 {
		return
	}
	p.println()

	for i := range r.Artifacts {
		a := &r.Artifacts[i]
		p.printf("  [%d] %s\n", i+1, p.render(p.title, a.Title))

		meta := a.Source.DisplayName() + " · " + string(a.Type)
		if t, ok := a.EffectiveTime(); ok {
			meta += " · " + t.Format("2006-01-02")
		}
		p.printf("      %s\n", p.render(p.muted, meta))
		if a.URL != "" {
			p.printf("      %s\n", a.URL)
		}
		if preview := strings.Join(strings.Fields(a.Content), " "); preview != "" {
			p.printf("      %s\n", domain.Truncate(preview, previewLength))
		}
		p.println()
	}
}

// artifact prints a single artifact in full.
func (p *printer) artifact(a *domain.Artifact) {
	p.println(p.render(p.title, a.Title))
	p.println(p.render(p.muted, fmt.Sprintf("%s · %s · %s", a.Source.DisplayName(), a.Type, a.ID)))
	if a.URL != "" {
		p.println(a.URL)
	}
	p.println()
	if a.Content != "" {
		p.println(a.Content)
		p.println()
	}

	p.field("created", formatTime(a.CreatedAt))
	p.field("updated", formatTime(a.UpdatedAt))
	for _, k := range sortedKeys(a.Metadata) {
		p.field(k, fmt.Sprint(a.Metadata[k]))
	}
}

func (p *printer) field(label, value string) {
	if value == "" {
		return
	}
	p.printf("  %s %s\n", p.render(p.label, fmt.Sprintf("%-14s", label)), value)
}

// status renders a yes/no marker.
func (p *printer) status(ok bool, yes, no string) string {
	if ok {
		return p.render(p.good, "✓ "+yes)
	}
	return p.render(p.bad, "✗ "+no)
}

func sourceNames(sources []domain.AppSource) string {
	if len(sources) == 0 {
		return "no sources"
	}
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.DisplayName()
	}
	return strings.Join(names, ", ")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
