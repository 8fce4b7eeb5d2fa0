package azuredevops

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector searches Azure DevOps work items.
type Connector struct {
	settings domain.AzureDevOpsSettings
	client   *Client

	mu     sync.Mutex
	closed bool
}

// New creates a new Azure DevOps connector.
func New(settings domain.AzureDevOpsSettings) *Connector {
	if settings.Project == "" {
		settings.Project = domain.DefaultAzureDevOpsProject
	}
	return &Connector{
		settings: settings,
		client:   NewClient(settings.OrgURL, settings.Project, settings.PAT),
	}
}

// Source returns the backend identifier.
func (c *Connector) Source() domain.AppSource {
	return domain.SourceAzureDevOps
}

// IsConfigured returns true if org URL and PAT are set.
func (c *Connector) IsConfigured() bool {
	return c.settings.IsConfigured()
}

// TestConnection lists work items in the project.
func (c *Connector) TestConnection(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.Ping(ctx); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("azure devops: invalid or expired PAT: %w", err)
		}
		return fmt.Errorf("azure devops: %w", err)
	}
	return nil
}

// Search runs a WIQL query and returns at most MaxResults artifacts.
// Upstream failures are logged and yield an empty result.
func (c *Connector) Search(ctx context.Context, query domain.RoutedQuery) ([]domain.Artifact, error) {
	if err := c.ready(); err != nil {
		logger.Warn("Azure DevOps not available, skipping search: %v", err)
		return []domain.Artifact{}, nil
	}
	if len(query.SearchTerms) == 0 {
		return []domain.Artifact{}, nil
	}

	ids, err := c.client.QueryIDs(ctx, buildWIQL(c.settings.Project, query.SearchTerms))
	if err != nil {
		logger.Error("Azure DevOps search failed: %v", err)
		return []domain.Artifact{}, nil
	}
	if len(ids) > MaxResults {
		ids = ids[:MaxResults]
	}
	if len(ids) == 0 {
		return []domain.Artifact{}, nil
	}

	items, err := c.client.GetWorkItems(ctx, ids)
	if err != nil {
		logger.Error("Azure DevOps search failed: %v", err)
		return []domain.Artifact{}, nil
	}

	artifacts := make([]domain.Artifact, 0, len(items))
	for _, item := range items {
		artifacts = append(artifacts, c.client.toArtifact(item, true))
	}
	logger.Debug("Azure DevOps: %d work items for %v", len(artifacts), query.SearchTerms)
	return artifacts, nil
}

// GetByID fetches one work item. Any failure maps to domain.ErrNotFound.
func (c *Connector) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	if err := c.ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}

	item, err := c.client.GetWorkItem(ctx, id)
	if err != nil {
		logger.Error("Azure DevOps get %s failed: %v", id, err)
		return nil, fmt.Errorf("%w: work item %s", domain.ErrNotFound, id)
	}
	a := c.client.toArtifact(*item, false)
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
	c.client.Close()
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
