// Package mcp provides an MCP (Model Context Protocol) server adapter that
// exposes federated artifact search to AI assistants.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
