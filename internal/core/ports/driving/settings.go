package driving

import (
	"context"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting by its dotted key.
	Set(key, value string) error

	// Keys lists every recognised setting key.
	Keys() []string

	// Value returns the effective raw value of key, environment first.
	Value(key string) (string, bool)

	// EnvVar names the environment variable that overrides key.
	EnvVar(key string) string

	// ValidateAIConfig pings the configured AI endpoint. Returns nil when AI
	// is not configured or no validator is installed.
	ValidateAIConfig(ctx context.Context) error
}
