package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.AISettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "no endpoint returns nil",
			settings: &domain.AISettings{APIKey: "k"},
			wantNil:  true,
		},
		{
			name: "api key creates service",
			settings: &domain.AISettings{
				Endpoint:   "https://contoso.openai.azure.com",
				APIKey:     "k",
				Deployment: "gpt-4o",
			},
		},
		{
			name: "ad auth with credentials creates service",
			settings: &domain.AISettings{
				Endpoint:     "https://contoso.openai.azure.com",
				Deployment:   "gpt-4o",
				UseADAuth:    true,
				TenantID:     "t",
				ClientID:     "c",
				ClientSecret: "s",
			},
		},
		{
			name: "ad auth without credentials fails",
			settings: &domain.AISettings{
				Endpoint:   "https://contoso.openai.azure.com",
				Deployment: "gpt-4o",
				UseADAuth:  true,
			},
			wantNil: true,
			wantErr: true,
		},
		{
			name: "missing deployment fails",
			settings: &domain.AISettings{
				Endpoint: "https://contoso.openai.azure.com",
				APIKey:   "k",
			},
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				require.NotNil(t, svc)
				assert.Equal(t, tt.settings.Deployment, svc.ModelName())
			}
		})
	}
}

func TestCreateAndValidateLLMService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"401","message":"denied"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "pong"}}},
		})
	}))
	defer server.Close()

	settings := &domain.AISettings{Endpoint: server.URL, Deployment: "d", APIKey: "good"}
	svc, err := CreateAndValidateLLMService(context.Background(), settings)
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.NoError(t, svc.Close())

	settings.APIKey = "bad"
	svc, err = CreateAndValidateLLMService(context.Background(), settings)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Nil(t, svc)

	assert.ErrorIs(t, Validator{}.ValidateLLM(context.Background(), settings), domain.ErrLLMUnavailable)
	assert.NoError(t, Validator{}.ValidateLLM(context.Background(), &domain.AISettings{}))

	settings.APIKey = "good"
	assert.NoError(t, Validator{}.ValidateLLM(context.Background(), settings))
}

func TestCreateAndValidateLLMService_Unconfigured(t *testing.T) {
	svc, err := CreateAndValidateLLMService(context.Background(), &domain.AISettings{})
	assert.NoError(t, err)
	assert.Nil(t, svc)
}
