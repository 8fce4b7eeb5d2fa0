package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// DefaultHistoryCapacity bounds the in-memory history.
const DefaultHistoryCapacity = 500

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore keeps the most recent search records in memory.
// The oldest record is dropped once capacity is reached.
type HistoryStore struct {
	mu       sync.RWMutex
	records  []domain.SearchRecord
	capacity int
}

// NewHistoryStore creates a history store. A non-positive capacity selects
// DefaultHistoryCapacity.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryStore{capacity: capacity}
}

// Save appends a record.
func (s *HistoryStore) Save(_ context.Context, record domain.SearchRecord) error {
	record.TargetApps = slices.Clone(record.TargetApps)
	record.SourcesSearched = slices.Clone(record.SourcesSearched)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	if over := len(s.records) - s.capacity; over > 0 {
		s.records = slices.Delete(s.records, 0, over)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.SearchRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Close is a no-op.
func (s *HistoryStore) Close() error { return nil }
