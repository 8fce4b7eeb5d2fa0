package notion

import (
	"slices"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// Placeholder titles for objects without one.
const (
	untitledPage     = "Untitled"
	untitledDatabase = "Untitled Database"
)

// plainText concatenates the plain text of a rich text array.
func plainText(items []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range items {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

// pageTitle returns the text of the page's title property.
func pageTitle(props notionapi.Properties) string {
	for _, p := range props {
		if t, ok := p.(*notionapi.TitleProperty); ok {
			return plainText(t.Title)
		}
	}
	return ""
}

// pageContent renders rich_text, select and multi_select properties as
// "Name: value" lines, ordered by property name.
func pageContent(props notionapi.Properties) string {
	var lines []string
	for _, name := range propertyNames(props) {
		var value string
		switch p := props[name].(type) {
		case *notionapi.RichTextProperty:
			value = plainText(p.RichText)
		case *notionapi.SelectProperty:
			value = p.Select.Name
		case *notionapi.MultiSelectProperty:
			opts := make([]string, 0, len(p.MultiSelect))
			for _, o := range p.MultiSelect {
				if o.Name != "" {
					opts = append(opts, o.Name)
				}
			}
			value = strings.Join(opts, ", ")
		}
		if value != "" {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

// inferType maps property names to an artifact type. The first matching
// rule wins: risk, then mitigation or control, then requirement, then test.
func inferType(names []string) domain.ArtifactType {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	anyContains := func(subs ...string) bool {
		for _, n := range lowered {
			for _, s := range subs {
				if strings.Contains(n, s) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case anyContains("risk"):
		return domain.ArtifactRisk
	case anyContains("mitigation", "control"):
		return domain.ArtifactMitigation
	case anyContains("requirement", "req"):
		return domain.ArtifactRequirement
	case anyContains("test"):
		return domain.ArtifactTestCase
	default:
		return domain.ArtifactDocument
	}
}

func propertyNames[M ~map[string]V, V any](m M) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// pageToArtifact converts a page into an artifact.
func pageToArtifact(p *notionapi.Page) domain.Artifact {
	names := propertyNames(p.Properties)

	title := pageTitle(p.Properties)
	if title == "" {
		title = untitledPage
	}

	parentID := string(p.Parent.DatabaseID)
	if parentID == "" {
		parentID = string(p.Parent.PageID)
	}

	return domain.Artifact{
		ID:      string(p.ID),
		Source:  domain.SourceNotion,
		Type:    inferType(names),
		Title:   title,
		Content: pageContent(p.Properties),
		URL:     p.URL,
		Metadata: map[string]any{
			"object":      "page",
			"parent_type": string(p.Parent.Type),
			"parent_id":   parentID,
			"properties":  names,
		},
		CreatedAt: timePtr(p.CreatedTime),
		UpdatedAt: timePtr(p.LastEditedTime),
	}
}

// databaseToArtifact converts a database into a document artifact.
func databaseToArtifact(d *notionapi.Database) domain.Artifact {
	title := plainText(d.Title)
	content := plainText(d.Description)
	if content == "" {
		content = "Notion database: " + title
	}
	if title == "" {
		title = untitledDatabase
	}

	return domain.Artifact{
		ID:      string(d.ID),
		Source:  domain.SourceNotion,
		Type:    domain.ArtifactDocument,
		Title:   title,
		Content: content,
		URL:     d.URL,
		Metadata: map[string]any{
			"object":     "database",
			"properties": propertyNames(d.Properties),
		},
		CreatedAt: timePtr(d.CreatedTime),
		UpdatedAt: timePtr(d.LastEditedTime),
	}
}
