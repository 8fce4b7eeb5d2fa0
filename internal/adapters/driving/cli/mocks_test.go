package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result     *domain.SearchResult
	artifact   *domain.Artifact
	records    []domain.SearchRecord
	health     map[domain.AppSource]bool
	configured []domain.AppSource
	err        error

	lastQuery  domain.SearchQuery
	lastSource domain.AppSource
	lastID     string
	lastLimit  int
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
	if m.artifact == nil {
		return nil, fmt.Errorf("%s/%s: %w", src, id, domain.ErrNotFound)
	}
	return m.artifact, nil
}

func (m *mockSearchService) TestConnections(context.Context) map[domain.AppSource]bool {
	return m.health
}

func (m *mockSearchService) ConfiguredSources() []domain.AppSource {
	return m.configured
}

func (m *mockSearchService) RecentSearches(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockSearchService) Close() error { return nil }

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	values      map[string]string
	env         map[string]string
	setErr      error
	validateErr error
	validated   int
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{
		values: map[string]string{
			"azure_devops.org_url": "https://dev.azure.com/contoso",
			"azure_devops.pat":     "pat-secret-1234",
		},
		env: map[string]string{
			"azure_devops.org_url": "AZURE_DEVOPS_ORG_URL",
			"azure_devops.pat":     "AZURE_DEVOPS_PAT",
			"figma.file_key":       "FIGMA_FILE_KEY",
			"ai.api_key":           "AZURE_AI_API_KEY",
		},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.env[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	keys := make([]string, 0, len(m.env))
	for k := range m.env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (m *mockSettingsService) Value(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok && v != ""
}

func (m *mockSettingsService) EnvVar(key string) string {
	return m.env[key]
}

func (m *mockSettingsService) ValidateAIConfig(context.Context) error {
	m.validated++
	return m.validateErr
}
