package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Summary call parameters.
const (
	summaryTemperature  = 0.3
	summaryMaxTokens    = 200
	summaryMaxArtifacts = 10
	summaryContentLimit = 200
)

// DefaultSummaryPrompt is the built-in system prompt for result summaries.
const DefaultSummaryPrompt = "You are a helpful assistant summarizing search results for MedTech risk " +
	"management professionals. Provide a concise 2-3 sentence summary of what was found."

// Summariser writes a short overview of ranked search results.
type Summariser struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSummariser creates a summariser. llm and prompts may be nil.
func NewSummariser(llm driven.LLMService, prompts driven.PromptStore) *Summariser {
	return &Summariser{llm: llm, prompts: prompts}
}

// Summarise returns a summary for the ranked artifacts. It never fails:
// without artifacts it reports none found, and without a working LLM it
// reports the count.
func (s *Summariser) Summarise(ctx context.Context, query string, artifacts []domain.Artifact) string {
	if len(artifacts) == 0 {
		return domain.SummaryNoResults
	}
	if s == nil || s.llm == nil {
		return domain.CountSummary(len(artifacts))
	}

	items := SummaryItems(artifacts)
	content, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: loadPrompt(s.prompts, driven.PromptSummarySystem, DefaultSummaryPrompt)},
		{Role: "user", Content: buildSummaryRequest(query, items)},
	}, driven.ChatOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		logger.Warn("Summary generation failed: %v", err)
		return domain.CountSummary(len(artifacts))
	}

	content = strings.TrimSpace(content)
	if content == "" {
		logger.Warn("Summary generation returned no content")
		return domain.CountSummary(len(artifacts))
	}
	return content
}

// SummaryItems trims the ranked artifacts to the bounded context given to
// the model.
func SummaryItems(artifacts []domain.Artifact) []domain.SummaryItem {
	n := min(len(artifacts), summaryMaxArtifacts)
	items := make([]domain.SummaryItem, n)
	for i, a := range artifacts[:n] {
		items[i] = domain.SummaryItem{
			Source:  a.Source,
			Title:   a.Title,
			Content: domain.Truncate(a.Content, summaryContentLimit),
		}
	}
	return items
}

func buildSummaryRequest(query string, items []domain.SummaryItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nResults found:\n", query)
	for _, it := range items {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", it.Source, it.Title, it.Content)
	}
	b.WriteString("\nProvide a brief summary of these results.")
	return b.String()
}
