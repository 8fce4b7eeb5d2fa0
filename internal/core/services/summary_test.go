package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func fiveArtifacts() []domain.Artifact {
	out := make([]domain.Artifact, 5)
	for i := range out {
		out[i] = artifact(domain.SourceNotion, fmt.Sprint(i), at(i+1))
	}
	return out
}

func TestSummarise_NoArtifacts(t *testing.T) {
	llm := &mockLLMService{response: "should not be used"}
	got := NewSummariser(llm, nil).Summarise(context.Background(), "q", nil)

	assert.Equal(t, domain.SummaryNoResults, got)
	assert.Zero(t, llm.callCount())
}

func TestSummarise_Unconfigured(t *testing.T) {
	got := NewSummariser(nil, nil).Summarise(context.Background(), "q", fiveArtifacts())
	assert.Equal(t, "Found 5 artifacts across multiple sources.", got)
}

func TestSummarise_LLMFailure(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLMService
	}{
		{"error", &mockLLMService{err: errors.New("503")}},
		{"blank", &mockLLMService{response: "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSummariser(tt.llm, nil).Summarise(context.Background(), "q", fiveArtifacts())
			assert.Equal(t, domain.CountSummary(5), got)
		})
	}
}

func TestSummarise_BoundedContext(t *testing.T) {
	artifacts := make([]domain.Artifact, 12)
	for i := range artifacts {
		a := artifact(domain.SourceAzureDevOps, fmt.Sprint(i), nil)
		a.Content = strings.Repeat("x", 300)
		artifacts[i] = a
	}
	llm := &mockLLMService{response: " Twelve work items. "}

	got := NewSummariser(llm, nil).Summarise(context.Background(), "alarms", artifacts)
	assert.Equal(t, "Twelve work items.", got)

	require.Equal(t, 1, llm.callCount())
	assert.InDelta(t, 0.3, llm.calls[0].Temperature, 1e-9)
	assert.Equal(t, 200, llm.calls[0].MaxTokens)
	assert.False(t, llm.calls[0].JSONResponse)

	user := llm.messages[0][1].Content
	assert.True(t, strings.HasPrefix(user, "Query: alarms\n"))
	assert.Equal(t, 10, strings.Count(user, "- [azure_devops]"))
	assert.NotContains(t, user, strings.Repeat("x", 201))
}

func TestSummaryItems(t *testing.T) {
	items := SummaryItems(fiveArtifacts()[:2])
	require.Len(t, items, 2)
	assert.Equal(t, domain.SourceNotion, items[0].Source)
	assert.Equal(t, "Artifact 0", items[0].Title)
}
