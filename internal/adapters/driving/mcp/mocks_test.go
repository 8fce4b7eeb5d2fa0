package mcp

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result     *domain.SearchResult
	artifact   *domain.Artifact
	configured []domain.AppSource
	err        error

	lastQuery  domain.SearchQuery
	lastSource domain.AppSource
	lastID     string
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockSearchService) GetArtifact(_ context.Context, src domain.AppSource, id string) (*domain.Artifact, error) {
	m.lastSource, m.lastID = src, id
	if m.err != nil {
		return nil, m.err
	}
	return m.artifact, nil
}

func (m *mockSearchService) TestConnections(context.Context) map[domain.AppSource]bool {
	return map[domain.AppSource]bool{}
}

func (m *mockSearchService) ConfiguredSources() []domain.AppSource {
	return m.configured
}

func (m *mockSearchService) RecentSearches(context.Context, int) ([]domain.SearchRecord, error) {
	return []domain.SearchRecord{}, nil
}

func (m *mockSearchService) Close() error {
	return nil
}
