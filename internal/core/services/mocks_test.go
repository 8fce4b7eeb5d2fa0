package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// mockConnector implements driven.Connector for testing.
type mockConnector struct {
	source     domain.AppSource
	configured bool
	artifacts  []domain.Artifact
	searchErr  error
	panicMsg   string
	delay      time.Duration
	getResult  *domain.Artifact
	getErr     error
	testErr    error
	closeErr   error

	searchCalls atomic.Int32
	getCalls    atomic.Int32
	closeCalls  atomic.Int32
}

func newMockConnector(src domain.AppSource, artifacts ...domain.Artifact) *mockConnector {
	return &mockConnector{source: src, configured: true, artifacts: artifacts}
}

func (m *mockConnector) Source() domain.AppSource { return m.source }

func (m *mockConnector) IsConfigured() bool { return m.configured }

func (m *mockConnector) TestConnection(_ context.Context) error {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.testErr
}

func (m *mockConnector) Search(ctx context.Context, _ domain.RoutedQuery) ([]domain.Artifact, error) {
	m.searchCalls.Add(1)
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.artifacts, nil
}

func (m *mockConnector) GetByID(_ context.Context, id string) (*domain.Artifact, error) {
	m.getCalls.Add(1)
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getResult != nil && m.getResult.ID == id {
		return m.getResult, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockConnector) Close() error {
	m.closeCalls.Add(1)
	return m.closeErr
}

var _ driven.Connector = (*mockConnector)(nil)

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []driven.ChatOptions
	messages [][]driven.ChatMessage
}

func (m *mockLLMService) Chat(_ context.Context, msgs []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, opts)
	m.messages = append(m.messages, msgs)
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string { return "mock" }

func (m *mockLLMService) Ping(_ context.Context) error { return m.err }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

func (m *mockPromptStore) Reload() {}

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	mu      sync.Mutex
	records []domain.SearchRecord
	saveErr error
	stall   bool
	closed  bool
}

func (m *mockHistoryStore) Save(ctx context.Context, r domain.SearchRecord) error {
	if m.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, r)
	return nil
}

func (m *mockHistoryStore) Recent(_ context.Context, limit int) ([]domain.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SearchRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockHistoryStore) Close() error {
	m.closed = true
	return nil
}

// mockPublisher implements driven.EventPublisher for testing.
type mockPublisher struct {
	mu        sync.Mutex
	published []domain.SearchRecord
	err       error
	stall     bool
}

func (m *mockPublisher) PublishSearch(ctx context.Context, r domain.SearchRecord) error {
	if m.stall {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, r)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func at(day int) *time.Time {
	t := time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func artifact(src domain.AppSource, id string, updated *time.Time) domain.Artifact {
	return domain.Artifact{
		ID:        id,
		Source:    src,
		Type:      domain.ArtifactDocument,
		Title:     "Artifact " + id,
		Content:   "content of " + id,
		Metadata:  map[string]any{},
		UpdatedAt: updated,
	}
}
