package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector searches the nodes of one Figma file.
type Connector struct {
	settings domain.FigmaSettings
	client   *Client
	cache    driven.Cache
	ttl      time.Duration

	mu     sync.Mutex
	closed bool
}

// New creates a new Figma connector. cache may be nil, in which case every
// search fetches the file. A non-positive ttl selects domain.DefaultCacheTTL.
func New(settings domain.FigmaSettings, cache driven.Cache, ttl time.Duration, opts ...Option) *Connector {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &Connector{
		settings: settings,
		client:   NewClient(settings.AccessToken, opts...),
		cache:    cache,
		ttl:      ttl,
	}
}

// Source returns the backend identifier.
func (c *Connector) Source() domain.AppSource {
	return domain.SourceFigma
}

// IsConfigured returns true if the token and file key are set.
func (c *Connector) IsConfigured() bool {
	return c.settings.IsConfigured()
}

// TestConnection calls /me with the configured token.
func (c *Connector) TestConnection(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.Ping(ctx); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("figma: invalid access token: %w", err)
		}
		return err
	}
	return nil
}

// Search walks the cached file document for matching frames and components.
// Upstream failures are logged and yield an empty result.
func (c *Connector) Search(ctx context.Context, query domain.RoutedQuery) ([]domain.Artifact, error) {
	if err := c.ready(); err != nil {
		logger.Warn("Figma not available, skipping search: %v", err)
		return []domain.Artifact{}, nil
	}

	file, err := c.file(ctx)
	if err != nil {
		logger.Error("Figma search failed: %v", err)
		return []domain.Artifact{}, nil
	}

	matches := findNodes(file.Document, query.SearchTerms, MaxResults)
	artifacts := make([]domain.Artifact, 0, len(matches))
	for _, m := range matches {
		artifacts = append(artifacts, m.toArtifact(c.settings.FileKey, file))
	}
	logger.Debug("Figma: %d nodes for %v", len(artifacts), query.SearchTerms)
	return artifacts, nil
}

// GetByID fetches one node of the configured file.
// Any failure maps to domain.ErrNotFound.
func (c *Connector) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	if err := c.ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}

	body, err := c.client.GetNodes(ctx, c.settings.FileKey, id)
	if err != nil {
		logger.Error("Figma get %s failed: %v", id, err)
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	var resp nodesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Error("Figma get %s: decode: %v", id, err)
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	entry := resp.Nodes[id]
	if entry == nil || entry.Document == nil {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}

	n := entry.Document
	return &domain.Artifact{
		ID:      id,
		Source:  domain.SourceFigma,
		Type:    domain.ArtifactDesign,
		Title:   n.Name,
		Content: "Figma " + n.Type + ": " + n.Name,
		URL:     NodeURL(c.settings.FileKey, id),
		Metadata: map[string]any{
			"node_type": n.Type,
			"file_key":  c.settings.FileKey,
		},
		UpdatedAt: parseTime(resp.LastModified),
	}, nil
}

// Close releases resources. The shared cache is left open.
// Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.Close()
	return nil
}

// CacheKey returns the cache key under which a file document is stored.
func CacheKey(fileKey string) string {
	return "figma:file:" + fileKey
}

// file returns the decoded file document, from cache when fresh.
func (c *Connector) file(ctx context.Context) (*fileResponse, error) {
	key := c.settings.FileKey
	body, err := driven.GetOrFetch(ctx, c.cache, CacheKey(key), c.ttl, func(ctx context.Context) ([]byte, error) {
		logger.Debug("Fetching Figma file %s", key)
		return c.client.GetFile(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	var file fileResponse
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("decode file %s: %w", key, err)
	}
	return &file, nil
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
