package azureopenai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}, "finish_reason": "stop"},
		},
	}
}

func TestNewLLMService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing endpoint", Config{Deployment: "gpt-4o", APIKey: "k"}},
		{"missing deployment", Config{Endpoint: "https://x", APIKey: "k"}},
		{"missing auth", Config{Endpoint: "https://x", Deployment: "gpt-4o"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			assert.Error(t, err)
		})
	}

	svc, err := NewLLMService(Config{Endpoint: "https://x/", Deployment: "gpt-4o", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", svc.ModelName())
	assert.Equal(t, DefaultAPIVersion, svc.apiVersion)
	assert.Equal(t, "https://x", svc.endpoint)
}

func TestLLMService_Chat_APIKey(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatReply(`{"target_apps":["figma"]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{Endpoint: server.URL, Deployment: "gpt-4o", APIKey: "secret"})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "route"},
		{Role: "user", Content: "login wireframe"},
	}, driven.ChatOptions{MaxTokens: 500, Temperature: 0.1, JSONResponse: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"target_apps":["figma"]}`, out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, 500, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.1, *got.Temperature, 1e-9)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestLLMService_Chat_PlainTextOmitsResponseFormat(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_ = json.NewEncoder(w).Encode(chatReply("summary"))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	assert.NotContains(t, raw, "response_format")
	assert.NotContains(t, raw, "temperature")
}

func TestLLMService_Chat_BearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer aad-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("api-key"))
		_ = json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{
		Endpoint:    server.URL,
		Deployment:  "d",
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "aad-token", TokenType: "Bearer"}),
	})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "hi"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNewClientCredentialsTokenSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenant-1/oauth2/v2.0/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, CognitiveServicesScope, r.PostForm.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"minted","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	ts := NewClientCredentialsTokenSource(context.Background(), server.URL, "tenant-1", "client", "secret")
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "minted", tok.AccessToken)
}

func TestLLMService_Chat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"error object", http.StatusBadRequest, `{"error":{"code":"content_filter","message":"blocked"}}`},
		{"non-json failure", http.StatusBadGateway, `upstream down`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json on success", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(Config{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
			require.NoError(t, err)

			_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
			assert.Error(t, err)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"401","message":"bad key"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatReply("p"))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{Endpoint: server.URL, Deployment: "d", APIKey: "k"})
	require.NoError(t, err)
	defer svc.Close()

	assert.NoError(t, svc.Ping(context.Background()))

	healthy.Store(false)
	assert.Error(t, svc.Ping(context.Background()))
}
