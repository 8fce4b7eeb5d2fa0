package icepanel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
	"github.com/custodia-labs/artifact-search/internal/normalisers/markdown"
)

// MaxResults caps the artifacts returned per search.
const MaxResults = 20

// appURL is the root of the IcePanel web app.
const appURL = "https://app.icepanel.io/landscapes/"

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector searches one IcePanel landscape.
type Connector struct {
	settings domain.IcePanelSettings
	client   *Client

	mu     sync.Mutex
	closed bool
}

// Option configures a Connector.
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the connector at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// New creates a new IcePanel connector.
func New(settings domain.IcePanelSettings, opts ...Option) *Connector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Connector{
		settings: settings,
		client:   NewClient(o.baseURL, settings.APIKey, settings.LandscapeID),
	}
}

// Source returns the backend identifier.
func (c *Connector) Source() domain.AppSource {
	return domain.SourceIcePanel
}

// IsConfigured returns true if the API key and landscape are set.
func (c *Connector) IsConfigured() bool {
	return c.settings.IsConfigured()
}

// TestConnection fetches the configured landscape.
func (c *Connector) TestConnection(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.client.Ping(ctx); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("icepanel: invalid API key: %w", err)
		}
		return err
	}
	return nil
}

// Search matches model objects, then diagrams, against the query terms.
// A failing listing is logged and skipped.
func (c *Connector) Search(ctx context.Context, query domain.RoutedQuery) ([]domain.Artifact, error) {
	if err := c.ready(); err != nil {
		logger.Warn("IcePanel not available, skipping search: %v", err)
		return []domain.Artifact{}, nil
	}

	terms := lowerTerms(query.SearchTerms)
	if len(terms) == 0 {
		return []domain.Artifact{}, nil
	}

	artifacts := []domain.Artifact{}

	objects, err := c.client.ModelObjects(ctx)
	if err != nil {
		logger.Error("IcePanel model object listing failed: %v", err)
	}
	for i := range objects {
		if matches(objects[i].Name, objects[i].Description, terms) {
			artifacts = append(artifacts, c.objectToArtifact(&objects[i]))
		}
	}

	diagrams, err := c.client.Diagrams(ctx)
	if err != nil {
		logger.Error("IcePanel diagram listing failed: %v", err)
	}
	for i := range diagrams {
		if matches(diagrams[i].Name, diagrams[i].Description, terms) {
			artifacts = append(artifacts, c.diagramToArtifact(&diagrams[i]))
		}
	}

	if len(artifacts) > MaxResults {
		artifacts = artifacts[:MaxResults]
	}
	logger.Debug("IcePanel: %d results for %v", len(artifacts), query.SearchTerms)
	return artifacts, nil
}

// GetByID fetches one model object. Any failure maps to domain.ErrNotFound.
func (c *Connector) GetByID(ctx context.Context, id string) (*domain.Artifact, error) {
	if err := c.ready(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}

	obj, err := c.client.ModelObject(ctx, id)
	if err != nil {
		logger.Error("IcePanel get %s failed: %v", id, err)
		return nil, fmt.Errorf("%w: model object %s", domain.ErrNotFound, id)
	}
	a := c.objectToArtifact(obj)
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

func (c *Connector) objectToArtifact(obj *ModelObject) domain.Artifact {
	content := markdown.ToText(obj.Description)
	if content == "" {
		content = "C4 " + obj.Type + ": " + obj.Name
	}
	tags := obj.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Artifact{
		ID:      obj.ID,
		Source:  domain.SourceIcePanel,
		Type:    domain.ArtifactArchitecture,
		Title:   obj.Name,
		Content: content,
		URL:     appURL + c.settings.LandscapeID,
		Metadata: map[string]any{
			"object_type":  obj.Type,
			"landscape_id": c.settings.LandscapeID,
			"tags":         tags,
			"technology":   obj.Technology,
		},
		UpdatedAt: parseTime(obj.UpdatedAt),
	}
}

func (c *Connector) diagramToArtifact(d *Diagram) domain.Artifact {
	content := markdown.ToText(d.Description)
	if content == "" {
		content = "Architecture diagram: " + d.Name
	}
	return domain.Artifact{
		ID:      d.ID,
		Source:  domain.SourceIcePanel,
		Type:    domain.ArtifactArchitecture,
		Title:   "Diagram: " + d.Name,
		Content: content,
		URL:     appURL + c.settings.LandscapeID + "/diagrams/" + d.ID,
		Metadata: map[string]any{
			"object_type":  "diagram",
			"view_type":    d.Type,
			"landscape_id": c.settings.LandscapeID,
		},
		UpdatedAt: parseTime(d.UpdatedAt),
	}
}

func lowerTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func matches(name, description string, terms []string) bool {
	text := strings.ToLower(name + " " + description)
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
