package driving

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// SearchService provides federated artifact search to external actors.
type SearchService interface {
	// Search routes the query, fans out to configured sources and returns
	// the merged, ranked and summarised result.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)

	// GetArtifact fetches one artifact from a configured source.
	// Returns domain.ErrNotFound when the source is not configured or the item is missing.
	GetArtifact(ctx context.Context, source domain.AppSource, id string) (*domain.Artifact, error)

	// TestConnections checks every configured source.
	TestConnections(ctx context.Context) map[domain.AppSource]bool

	// ConfiguredSources lists the sources that will be queried.
	ConfiguredSources() []domain.AppSource

	// RecentSearches returns the audit trail, newest first.
	// Returns an empty slice when history is disabled.
	RecentSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Close releases every connector.
	Close() error
}
