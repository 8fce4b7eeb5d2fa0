package driven

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// AIConfigValidator verifies AI settings by testing connectivity to the
// configured endpoint.
type AIConfigValidator interface {
	// ValidateLLM returns nil if the settings are valid or not configured.
	ValidateLLM(ctx context.Context, settings *domain.AISettings) error
}
