package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// APIVersion is the REST API version used for every call.
	APIVersion = "7.0"

	// MaxResults caps the work items fetched per search.
	MaxResults = 20

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// Client is a minimal Azure DevOps work item tracking client.
type Client struct {
	orgURL  string
	project string
	pat     string

	once sync.Once
	http *http.Client
}

// NewClient creates a client for one project.
func NewClient(orgURL, project, pat string) *Client {
	return &Client{
		orgURL:  strings.TrimRight(orgURL, "/"),
		project: project,
		pat:     pat,
	}
}

// httpClient creates the HTTP client on first use.
func (c *Client) httpClient() *http.Client {
	c.once.Do(func() {
		c.http = &http.Client{Timeout: DefaultTimeout}
	})
	return c.http
}

// workItemRef is one row of a WIQL result.
type workItemRef struct {
	ID int `json:"id"`
}

type wiqlResponse struct {
	WorkItems []workItemRef `json:"workItems"`
}

// workItem is the REST representation of a work item.
type workItem struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

type workItemsResponse struct {
	Value []workItem `json:"value"`
}

// QueryIDs runs a WIQL query and returns matching work item ids in result order.
func (c *Client) QueryIDs(ctx context.Context, wiql string) ([]int, error) {
	body, err := json.Marshal(map[string]string{"query": wiql})
	if err != nil {
		return nil, fmt.Errorf("marshal wiql: %w", err)
	}

	var resp wiqlResponse
	if err := c.do(ctx, http.MethodPost, c.projectURL("/_apis/wit/wiql", nil), body, &resp); err != nil {
		return nil, fmt.Errorf("wiql query: %w", err)
	}

	ids := make([]int, len(resp.WorkItems))
	for i, ref := range resp.WorkItems {
		ids[i] = ref.ID
	}
	return ids, nil
}

// GetWorkItems fetches work items by id in one batch call.
func (c *Client) GetWorkItems(ctx context.Context, ids []int) ([]workItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	var resp workItemsResponse
	q := url.Values{"ids": {strings.Join(parts, ",")}}
	if err := c.do(ctx, http.MethodGet, c.projectURL("/_apis/wit/workitems", q), nil, &resp); err != nil {
		return nil, fmt.Errorf("get work items: %w", err)
	}
	return resp.Value, nil
}

// GetWorkItem fetches a single work item.
func (c *Client) GetWorkItem(ctx context.Context, id string) (*workItem, error) {
	var item workItem
	path := "/_apis/wit/workitems/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, c.projectURL(path, nil), nil, &item); err != nil {
		return nil, fmt.Errorf("get work item %s: %w", id, err)
	}
	return &item, nil
}

// Ping checks the work items endpoint. A 404 still proves the credentials work.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, c.projectURL("/_apis/wit/workitems", nil), nil, nil)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// WebURL returns the browser link for a work item.
func (c *Client) WebURL(id int) string {
	return fmt.Sprintf("%s/%s/_workitems/edit/%d", c.orgURL, url.PathEscape(c.project), id)
}

func (c *Client) projectURL(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api-version", APIVersion)
	return c.orgURL + "/" + url.PathEscape(c.project) + path + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.pat)))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// Azure DevOps answers bad PATs with a 203 sign-in page.
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg)), URL: u}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
}
