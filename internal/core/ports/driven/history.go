package driven

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// HistoryStore persists an audit trail of completed searches.
type HistoryStore interface {
	// Save records a search.
	Save(ctx context.Context, record domain.SearchRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.SearchRecord, error)

	// Close releases resources.
	Close() error
}

// EventPublisher announces completed searches to other systems.
type EventPublisher interface {
	// PublishSearch sends one record. Implementations must respect ctx.
	PublishSearch(ctx context.Context, record domain.SearchRecord) error

	// Close flushes and releases resources.
	Close() error
}
