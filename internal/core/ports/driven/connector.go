package driven

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// Connector searches one backend and normalises its items into artifacts.
// Each source (azure_devops, figma, notion, icepanel) implements this interface.
type Connector interface {
	// Source returns the backend this connector serves.
	Source() domain.AppSource

	// IsConfigured reports whether the credentials needed to call the backend
	// are present. It performs no I/O.
	IsConfigured() bool

	// TestConnection performs one lightweight authenticated call.
	// Returns nil when the backend is reachable and accepts the credentials.
	TestConnection(ctx context.Context) error

	// Search returns up to a per-source cap of artifacts for the routed query.
	// Upstream failures are logged and reported as an empty slice.
	Search(ctx context.Context, query domain.RoutedQuery) ([]domain.Artifact, error)

	// GetByID fetches a single artifact. Returns domain.ErrNotFound when the
	// item is missing or the backend call fails.
	GetByID(ctx context.Context, id string) (*domain.Artifact, error)

	// Close releases the HTTP client. Safe to call more than once.
	Close() error
}
