// Package azureopenai provides an LLM service adapter for Azure OpenAI deployments.
package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = domain.DefaultAIAPIVersion
	DefaultTimeout    = 60 * time.Second

	// CognitiveServicesScope is the Azure AD scope for Azure OpenAI.
	CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

	// DefaultAuthorityURL is the Azure AD token authority.
	DefaultAuthorityURL = "https://login.microsoftonline.com"
)

// Config holds configuration for the Azure OpenAI LLM service.
type Config struct {
	// Endpoint is the resource URL, e.g. https://contoso.openai.azure.com (required).
	Endpoint string

	// Deployment is the model deployment name (required).
	Deployment string

	// APIVersion is the REST api-version (default: 2024-02-01).
	APIVersion string

	// APIKey authenticates with the api-key header. Takes precedence over TokenSource.
	APIKey string

	// TokenSource supplies Azure AD bearer tokens when no APIKey is set.
	TokenSource oauth2.TokenSource

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// LLMService provides chat completions against one Azure OpenAI deployment.
type LLMService struct {
	client      *http.Client
	endpoint    string
	deployment  string
	apiVersion  string
	apiKey      string
	tokenSource oauth2.TokenSource
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Messages       []chatCompletionMsg `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float64            `json:"temperature,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Azure OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azureopenai: endpoint is required")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("azureopenai: deployment is required")
	}
	if cfg.APIKey == "" && cfg.TokenSource == nil {
		return nil, errors.New("azureopenai: API key or Azure AD token source is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:      &http.Client{Timeout: cfg.Timeout},
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		deployment:  cfg.Deployment,
		apiVersion:  cfg.APIVersion,
		apiKey:      cfg.APIKey,
		tokenSource: cfg.TokenSource,
	}, nil
}

// NewClientCredentialsTokenSource returns an Azure AD token source for a
// service principal. authority may be empty to use DefaultAuthorityURL.
func NewClientCredentialsTokenSource(ctx context.Context, authority, tenantID, clientID, clientSecret string) oauth2.TokenSource {
	if authority == "" {
		authority = DefaultAuthorityURL
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(authority, "/"), url.PathEscape(tenantID)),
		Scopes:       []string{CognitiveServicesScope},
	}
	return cfg.TokenSource(ctx)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}

	reqBody := chatCompletionRequest{Messages: chatMessages}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		reqBody.Temperature = &t
	}
	if opts.JSONResponse {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url("/chat/completions"), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := s.authorize(req); err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("azureopenai error (status %d): %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("azureopenai error (%s): %s", chatResp.Error.Code, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azureopenai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("azureopenai: no response choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the deployment name.
func (s *LLMService) ModelName() string {
	return s.deployment
}

// Ping sends a one-token completion to validate the endpoint and credentials.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Chat(ctx, []driven.ChatMessage{{Role: "user", Content: "ping"}}, driven.ChatOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("azureopenai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *LLMService) url(path string) string {
	return fmt.Sprintf("%s/openai/deployments/%s%s?api-version=%s",
		s.endpoint, url.PathEscape(s.deployment), path, url.QueryEscape(s.apiVersion))
}

func (s *LLMService) authorize(req *http.Request) error {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
		return nil
	}
	tok, err := s.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("%w: acquire Azure AD token: %w", domain.ErrLLMUnavailable, err)
	}
	tok.SetAuthHeader(req)
	return nil
}
