package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// SearchInput is the input schema for the search_artifacts tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"natural-language question about requirements, risks, designs or architecture"`
}

// SearchOutput is the output schema for the search_artifacts tool.
type SearchOutput struct {
	Query            string           `json:"query"`
	Artifacts        []ArtifactOutput `json:"artifacts"`
	SourcesSearched  []string         `json:"sources_searched"`
	TotalResults     int              `json:"total_results"`
	SearchDurationMS float64          `json:"search_duration_ms"`
	Summary          string           `json:"summary,omitempty"`
}

// ArtifactOutput is the wire form of one artifact. Timestamps are RFC 3339.
type ArtifactOutput struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	ArtifactType string         `json:"artifact_type"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	URL          string         `json:"url,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// GetArtifactInput is the input schema for the get_artifact tool.
type GetArtifactInput struct {
	Source string `json:"source" jsonschema:"one of azure_devops, figma, notion, icepanel"`
	ID     string `json:"id" jsonschema:"artifact id within the source"`
}

// GetArtifactOutput is the output schema for the get_artifact tool.
type GetArtifactOutput struct {
	Artifact ArtifactOutput `json:"artifact"`
}

// ListSourcesInput is the (empty) input schema for the list_sources tool.
type ListSourcesInput struct{}

// SourceInfo describes one backend.
type SourceInfo struct {
	Source     string `json:"source"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// ListSourcesOutput is the output schema for the list_sources tool.
type ListSourcesOutput struct {
	Sources []SourceInfo `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_artifacts",
		Description: "Search requirements, risks, mitigations, designs and architecture " +
			"across Azure DevOps, Figma, Notion and IcePanel",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_artifact",
		Description: "Fetch one artifact by source and id",
	}, s.handleGetArtifact)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the supported sources and whether each is configured",
	}, s.handleListSources)
}

// handleSearch handles the search_artifacts tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Search.Search(ctx, domain.SearchQuery{Query: input.Query})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Query:            result.Query,
		Artifacts:        make([]ArtifactOutput, len(result.Artifacts)),
		SourcesSearched:  make([]string, len(result.SourcesSearched)),
		TotalResults:     result.TotalResults,
		SearchDurationMS: result.SearchDurationMS,
		Summary:          result.Summary,
	}
	for i := range result.Artifacts {
		output.Artifacts[i] = toArtifactOutput(&result.Artifacts[i])
	}
	for i, src := range result.SourcesSearched {
		output.SourcesSearched[i] = string(src)
	}

	return nil, output, nil
}

// handleGetArtifact handles the get_artifact tool invocation.
func (s *Server) handleGetArtifact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetArtifactInput,
) (*mcp.CallToolResult, GetArtifactOutput, error) {
	src, err := domain.ParseSource(input.Source)
	if err != nil {
		return nil, GetArtifactOutput{}, err
	}

	artifact, err := s.ports.Search.GetArtifact(ctx, src, input.ID)
	if err != nil {
		return nil, GetArtifactOutput{}, fmt.Errorf("artifact %s/%s: %w", src, input.ID, err)
	}

	return nil, GetArtifactOutput{Artifact: toArtifactOutput(artifact)}, nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListSourcesInput,
) (*mcp.CallToolResult, ListSourcesOutput, error) {
	return nil, ListSourcesOutput{Sources: s.sourceInfos()}, nil
}

// sourceInfos lists every source in canonical order.
func (s *Server) sourceInfos() []SourceInfo {
	configured := make(map[domain.AppSource]bool)
	for _, src := range s.ports.Search.ConfiguredSources() {
		configured[src] = true
	}

	all := domain.AllSources()
	infos := make([]SourceInfo, len(all))
	for i, src := range all {
		infos[i] = SourceInfo{
			Source:     string(src),
			Name:       src.DisplayName(),
			Configured: configured[src],
		}
	}
	return infos
}

func toArtifactOutput(a *domain.Artifact) ArtifactOutput {
	return ArtifactOutput{
		ID:           a.ID,
		Source:       string(a.Source),
		ArtifactType: string(a.Type),
		Title:        a.Title,
		Content:      a.Content,
		URL:          a.URL,
		Metadata:     a.Metadata,
		CreatedAt:    formatTime(a.CreatedAt),
		UpdatedAt:    formatTime(a.UpdatedAt),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
