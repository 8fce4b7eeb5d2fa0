// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// SearchCompleted carries a federated search result back to the model.
type SearchCompleted struct {
	Result *domain.SearchResult
	Err    error
}

// ArtifactSelected is sent when a result is opened from the list.
type ArtifactSelected struct {
	Artifact domain.Artifact
}

// ArtifactLoaded carries a freshly fetched artifact for the detail view.
type ArtifactLoaded struct {
	Artifact *domain.Artifact
	Err      error
}

// ConnectionsTested carries the outcome of a connection check.
type ConnectionsTested struct {
	Status map[domain.AppSource]bool
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}

// Quit requests application exit.
type Quit struct{}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and results list.
	ViewSearch ViewType = iota
	// ViewDetail shows one artifact in full.
	ViewDetail
	// ViewSources lists sources and their connection status.
	ViewSources
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDetail:
		return "detail"
	case ViewSources:
		return "sources"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}
