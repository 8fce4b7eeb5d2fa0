package domain

import (
	"fmt"
	"strings"
)

// AppSource identifies one of the supported backends.
type AppSource string

// Supported sources.
const (
	SourceAzureDevOps AppSource = "azure_devops"
	SourceFigma       AppSource = "figma"
	SourceNotion      AppSource = "notion"
	SourceIcePanel    AppSource = "icepanel"
)

// AllSources returns every supported source in canonical order.
func AllSources() []AppSource {
	return []AppSource{SourceAzureDevOps, SourceFigma, SourceNotion, SourceIcePanel}
}

// ParseSource converts a wire value into an AppSource.
func ParseSource(s string) (AppSource, error) {
	src := AppSource(strings.ToLower(strings.TrimSpace(s)))
	if !src.IsValid() {
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrUnknownSource, s)
	}
	return src, nil
}

// IsValid returns true if the source is recognised.
func (s AppSource) IsValid() bool {
	switch s {
	case SourceAzureDevOps, SourceFigma, SourceNotion, SourceIcePanel:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (s AppSource) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the source.
func (s AppSource) DisplayName() string {
	switch s {
	case SourceAzureDevOps:
		return "Azure DevOps"
	case SourceFigma:
		return "Figma"
	case SourceNotion:
		return "Notion"
	case SourceIcePanel:
		return "IcePanel"
	default:
		return string(s)
	}
}

// SourceStatus reports whether a source is configured and reachable.
type SourceStatus struct {
	Source     AppSource `json:"source"`
	Configured bool      `json:"configured"`
	Healthy    bool      `json:"healthy"`
}
