package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is the longest accepted query, in characters.
const MaxQueryLength = 1000

// SearchQuery is the user-supplied request.
type SearchQuery struct {
	Query   string         `json:"query"`
	Context map[string]any `json:"context,omitempty"`
}

// Validate checks the query length bounds.
func (q SearchQuery) Validate() error {
	trimmed := strings.TrimSpace(q.Query)
	if trimmed == "" {
		return fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(q.Query); n > MaxQueryLength {
		return fmt.Errorf("%w: query is %d characters, maximum is %d", ErrInvalidInput, n, MaxQueryLength)
	}
	return nil
}

// RoutedQuery is the router's decision for a query.
type RoutedQuery struct {
	OriginalQuery string         `json:"original_query"`
	TargetApps    []AppSource    `json:"target_apps"`
	ArtifactTypes []ArtifactType `json:"artifact_types"`
	SearchTerms   []string       `json:"search_terms"`
	Filters       map[string]any `json:"filters,omitempty"`
}

// Targets reports whether src is one of the routed sources.
func (r RoutedQuery) Targets(src AppSource) bool {
	for _, s := range r.TargetApps {
		if s == src {
			return true
		}
	}
	return false
}

// WantsType reports whether t is one of the routed artifact types.
func (r RoutedQuery) WantsType(t ArtifactType) bool {
	for _, at := range r.ArtifactTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Dedupe returns items with duplicates removed, keeping first-seen order.
func Dedupe[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
