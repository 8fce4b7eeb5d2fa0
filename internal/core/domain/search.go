package domain

import (
	"fmt"
	"time"
)

// Fixed summary texts used when no model-written summary is produced.
const (
	SummaryNoSources = "No configured data sources available for this query."
	SummaryNoResults = "No matching artifacts found."
)

// CountSummary is the templated summary used when the summariser is
// unavailable or fails.
func CountSummary(n int) string {
	return fmt.Sprintf("Found %d artifacts across multiple sources.", n)
}

// SearchResult is the merged answer for one query.
type SearchResult struct {
	Query string `json:"query"`

	// Artifacts are sorted by effective time, newest first.
	Artifacts []Artifact `json:"artifacts"`

	// SourcesSearched lists the sources that answered successfully.
	SourcesSearched []AppSource `json:"sources_searched"`

	TotalResults     int     `json:"total_results"`
	SearchDurationMS float64 `json:"search_duration_ms"`

	// Summary is empty when none was produced.
	Summary string `json:"summary,omitempty"`
}

// DurationMS converts d to fractional milliseconds.
func DurationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// SummaryItem is the trimmed view of an artifact passed to the summariser.
type SummaryItem struct {
	Source  AppSource
	Title   string
	Content string
}

// SearchRecord is an audit entry for a completed search.
type SearchRecord struct {
	ID              string      `json:"id"`
	Query           string      `json:"query"`
	TargetApps      []AppSource `json:"target_apps"`
	SourcesSearched []AppSource `json:"sources_searched"`
	TotalResults    int         `json:"total_results"`
	DurationMS      float64     `json:"duration_ms"`
	CreatedAt       time.Time   `json:"created_at"`
}
