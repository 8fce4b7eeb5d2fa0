package icepanel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the IcePanel REST API root.
	DefaultBaseURL = "https://api.icepanel.io/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// ModelObject is a C4 element: system, app, store, component or actor.
type ModelObject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	Technology  any      `json:"technology,omitempty"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Diagram is a view of the landscape.
type Diagram struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	UpdatedAt   string `json:"updatedAt"`
}

type modelObjectsResponse struct {
	ModelObjects []ModelObject `json:"modelObjects"`
}

// diagramsResponse accepts both envelope names used by the API.
type diagramsResponse struct {
	Diagrams []Diagram `json:"diagrams"`
	Data     []Diagram `json:"data"`
}

type modelObjectResponse struct {
	ModelObject *ModelObject `json:"modelObject"`
	Data        *ModelObject `json:"data"`
}

// Client is a minimal IcePanel REST client scoped to one landscape.
type Client struct {
	baseURL     string
	apiKey      string
	landscapeID string

	once sync.Once
	http *http.Client
}

// NewClient creates a client for one landscape. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL, apiKey, landscapeID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		landscapeID: landscapeID,
	}
}

// httpClient creates the HTTP client on first use.
func (c *Client) httpClient() *http.Client {
	c.once.Do(func() {
		c.http = &http.Client{Timeout: DefaultTimeout}
	})
	return c.http
}

func (c *Client) landscapePath() string {
	return "/landscapes/" + url.PathEscape(c.landscapeID)
}

// ModelObjects lists the model objects of the latest landscape version.
func (c *Client) ModelObjects(ctx context.Context) ([]ModelObject, error) {
	var resp modelObjectsResponse
	if err := c.get(ctx, c.landscapePath()+"/versions/latest/model/objects", &resp); err != nil {
		return nil, err
	}
	return resp.ModelObjects, nil
}

// Diagrams lists the diagrams of the latest landscape version.
func (c *Client) Diagrams(ctx context.Context) ([]Diagram, error) {
	var resp diagramsResponse
	if err := c.get(ctx, c.landscapePath()+"/versions/latest/diagrams", &resp); err != nil {
		return nil, err
	}
	return append(resp.Diagrams, resp.Data...), nil
}

// ModelObject fetches one model object.
func (c *Client) ModelObject(ctx context.Context, id string) (*ModelObject, error) {
	var resp modelObjectResponse
	if err := c.get(ctx, c.landscapePath()+"/model-objects/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	obj := resp.ModelObject
	if obj == nil {
		obj = resp.Data
	}
	if obj == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "empty response", URL: id}
	}
	return obj, nil
}

// Ping fetches the landscape.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, c.landscapePath(), nil)
}

// Close releases idle connections.
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
}

// get performs a GET and decodes a 200 body into out; out may be nil.
func (c *Client) get(ctx context.Context, path string, out any) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("icepanel: build request: %w", err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("icepanel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), URL: u}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("icepanel: decode %s: %w", path, err)
	}
	return nil
}
