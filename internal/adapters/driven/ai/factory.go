// Package ai provides factory functions for creating the AI service adapter.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/artifact-search/internal/adapters/driven/llm/azureopenai"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the Azure OpenAI service described by settings.
// Returns nil if the AI endpoint is not configured.
func CreateLLMService(ctx context.Context, settings *domain.AISettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	cfg := azureopenai.Config{
		Endpoint:   settings.Endpoint,
		Deployment: settings.Deployment,
		APIVersion: settings.APIVersion,
		APIKey:     settings.APIKey,
	}
	if cfg.APIKey == "" {
		if settings.TenantID == "" || settings.ClientID == "" || settings.ClientSecret == "" {
			return nil, errors.New("azure AD auth needs tenant_id, client_id and client_secret")
		}
		cfg.TokenSource = azureopenai.NewClientCredentialsTokenSource(
			ctx, "", settings.TenantID, settings.ClientID, settings.ClientSecret)
	}

	svc, err := azureopenai.NewLLMService(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil, nil when AI is not configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.AISettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'artifact-search config set ai.<key>' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// Validator checks AI settings by pinging the configured endpoint.
type Validator struct{}

// Ensure Validator implements the interface.
var _ driven.AIConfigValidator = Validator{}

// ValidateLLM returns nil when AI is unconfigured or reachable.
func (Validator) ValidateLLM(ctx context.Context, settings *domain.AISettings) error {
	svc, err := CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	return svc.Close()
}
