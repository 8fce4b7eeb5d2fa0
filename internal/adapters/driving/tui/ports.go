// Package tui provides an interactive terminal user interface for artifact search.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Search provides federated search, artifact lookup and connection checks.
	Search driving.SearchService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(search driving.SearchService) *Ports {
	return &Ports{Search: search}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
