package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxResults is the page size of a workspace search.
	MaxResults = 20

	// DatabasePageSize is the largest page size of a database query.
	DatabasePageSize = 100
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector searches Notion pages and databases.
type Connector struct {
	settings  domain.NotionSettings
	transport http.RoundTripper

	once   sync.Once
	http   *http.Client
	client *notionapi.Client

	mu     sync.Mutex
	closed bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithTransport sets the HTTP transport used by the API client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Connector) {
		c.transport = rt
	}
}

// New creates a new Notion connector.
func New(settings domain.NotionSettings, opts ...Option) *Connector {
	c := &Connector{settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api creates the API client on first use.
func (c *Connector) api() *notionapi.Client {
	c.once.Do(func() {
		c.http = &http.Client{Timeout: DefaultTimeout, Transport: c.transport}
		c.client = notionapi.NewClient(
			notionapi.Token(c.settings.APIKey),
			notionapi.WithHTTPClient(c.http),
		)
	})
	return c.client
}

// Source returns the backend identifier.
func (c *Connector) Source() domain.AppSource {
	return domain.SourceNotion
}

// IsConfigured returns true if the API key and database are set.
func (c *Connector) IsConfigured() bool {
	return c.settings.IsConfigured()
}

// TestConnection fetches the integration's bot user, then reads one row of
// the configured database to confirm it is shared with the integration.
func (c *Connector) TestConnection(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if _, err := c.api().User.Me(ctx); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("notion: invalid integration token: %w", err)
		}
		return fmt.Errorf("notion: %w", err)
	}
	if _, err := c.queryDatabase(ctx, nil, 1); err != nil {
		return err
	}
	return nil
}

// Search runs a workspace search for the joined terms.
// Upstream failures are logged and yield an empty result.
func (c *Connector) Search(ctx context.Context, query domain.RoutedQuery) ([]domain.Artifact, error) {
	if err := c.ready(); err != nil {
		logger.Warn("Notion not available, skipping search: %v", err)
		return []domain.Artifact{}, nil
	}

	resp, err := c.api().Search.Do(ctx, &notionapi.SearchRequest{
		Query:    strings.Join(query.SearchTerms, " "),
		PageSize: MaxResults,
	})
	if err != nil {
		logger.Error("Notion search failed: %v", err)
		return []domain.Artifact{}, nil
	}

	artifacts := make([]domain.Artifact, 0, len(resp.Results))
	for _, obj := range resp.Results {
		switch o := obj.(type) {
		case *notionapi.Page:
			artifacts = append(artifacts, pageToArtifact(o))
		case *notionapi.Database:
			artifacts = append(artifacts, databaseToArtifact(o))
		}
	}
	if len(artifacts) > MaxResults {
		artifacts = artifacts[:MaxResults]
	}
	logger.Debug("Notion: %d results for %v", len(artifacts), query.SearchTerms)
	return artifacts, nil
}

// queryDatabase returns up to pageSize pages of the configured database
// that match filter. A nil filter matches every page.
func (c *Connector) queryDatabase(ctx context.Context, filter notionapi.Filter, pageSize int) ([]domain.Artifact, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if pageSize <= 0 || pageSize > DatabasePageSize {
		pageSize = DatabasePageSize
	}

	resp, err := c.api().Database.Query(ctx, notionapi.DatabaseID(c.settings.DatabaseID), &notionapi.DatabaseQueryRequest{
		Filter:   filter,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("notion: query database %s: %w", c.settings.DatabaseID, err)
	}

	artifacts := make([]domain.Artifact, 0, len(resp.Results))
	for i := range resp.Results {
		artifacts = append(artifacts, pageToArtifact(&resp.Results[i]))
	}
	return artifacts, nil
}

// GetByID retrieves one page. Any failure maps to domain.ErrNotFound.
func (c *Connector) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	if err := c.ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}

	page, err := c.api().Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		logger.Error("Notion get %s failed: %v", id, err)
		return nil, fmt.Errorf("%w: page %s", domain.ErrNotFound, id)
	}
	a := pageToArtifact(page)
	return &a, nil
}

// Close releases resources. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

func (c *Connector) ready() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.ErrConnectorClosed
	}
	if !c.IsConfigured() {
		return domain.ErrSourceNotConfigured
	}
	return nil
}
