package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested artifact does not exist or could not be fetched.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSource indicates a source name outside the supported set.
	ErrUnknownSource = errors.New("unknown source")

	// ErrSourceNotConfigured indicates the source lacks the credentials it needs.
	ErrSourceNotConfigured = errors.New("source not configured")

	// ErrNoSources indicates that no source is configured.
	ErrNoSources = errors.New("no configured sources")

	// ErrLLMUnavailable indicates the AI service is not configured.
	// Routing falls back to keywords and summaries to a count.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Connector Errors.

	// ErrConnectorClosed indicates the connector has been closed.
	ErrConnectorClosed = errors.New("connector closed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
