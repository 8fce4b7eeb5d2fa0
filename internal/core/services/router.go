package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/logger"
)

// Routing call parameters.
const (
	routingTemperature = 0.1
	routingMaxTokens   = 500
	maxSearchTerms     = 5
	minTermLength      = 3
)

// DefaultRoutingPrompt is the built-in system prompt for query routing.
const DefaultRoutingPrompt = `You are a query router for a MedTech risk management system.
Analyze the user's query and determine:
1. Which applications to search (azure_devops, figma, notion, icepanel)
2. What types of artifacts they're looking for
3. Key search terms to use

Available applications:
- azure_devops: Work items, requirements, risks, mitigations, test cases, bugs, user stories
- figma: UI/UX designs, wireframes, mockups, design components
- notion: Documentation, SOPs, policies, meeting notes, risk assessments
- icepanel: System architecture diagrams, C4 models, component relationships

Artifact types: requirement, risk, mitigation, design, architecture, work_item, test_case, document

Respond in JSON format:
{
    "target_apps": ["app1", "app2"],
    "artifact_types": ["type1", "type2"],
    "search_terms": ["term1", "term2"]
}`

// defaultSearchTerms is used when a query yields no usable tokens.
var defaultSearchTerms = []string{"risk", "requirement"}

// stopWords are dropped when deriving search terms.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "what": {}, "where": {},
	"how": {}, "can": {}, "you": {}, "get": {}, "me": {}, "find": {}, "show": {},
	"related": {}, "to": {}, "this": {}, "that": {}, "for": {}, "in": {}, "on": {},
	"with": {},
}

// keywordRule maps a group of substrings to the sources and type they imply.
type keywordRule struct {
	keywords []string
	sources  []domain.AppSource
	typ      domain.ArtifactType
}

// keywordRules are evaluated in order; every matching rule contributes.
var keywordRules = []keywordRule{
	{
		keywords: []string{"design", "ui", "ux", "wireframe", "mockup"},
		sources:  []domain.AppSource{domain.SourceFigma},
		typ:      domain.ArtifactDesign,
	},
	{
		keywords: []string{"architecture", "system", "component", "c4", "diagram"},
		sources:  []domain.AppSource{domain.SourceIcePanel},
		typ:      domain.ArtifactArchitecture,
	},
	{
		keywords: []string{"risk", "hazard", "harm", "severity"},
		sources:  []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion},
		typ:      domain.ArtifactRisk,
	},
	{
		keywords: []string{"mitigation", "control", "measure", "protection"},
		sources:  []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion},
		typ:      domain.ArtifactMitigation,
	},
	{
		keywords: []string{"requirement", "req", "story", "feature"},
		sources:  []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion},
		typ:      domain.ArtifactRequirement,
	},
	{
		keywords: []string{"document", "sop", "procedure", "policy"},
		sources:  []domain.AppSource{domain.SourceNotion},
		typ:      domain.ArtifactDocument,
	},
	{
		keywords: []string{"task", "bug", "sprint", "work item"},
		sources:  []domain.AppSource{domain.SourceAzureDevOps},
		typ:      domain.ArtifactWorkItem,
	},
}

// Router maps free-text queries to routed queries.
// It uses the LLM when one is configured and always falls back to keyword rules.
type Router struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewRouter creates a router. llm and prompts may be nil.
func NewRouter(llm driven.LLMService, prompts driven.PromptStore) *Router {
	return &Router{llm: llm, prompts: prompts}
}

// Route classifies the query. It never fails; any classification error
// results in the keyword fallback.
func (r *Router) Route(ctx context.Context, query domain.SearchQuery) domain.RoutedQuery {
	logger.Section("Routing")
	logger.Debug("Query: %q", query.Query)

	if r.llm == nil {
		logger.Warn("AI service not configured, using keyword routing")
		return FallbackRoute(query.Query)
	}

	routed, err := r.classify(ctx, query.Query)
	if err != nil {
		logger.Warn("Query classification failed: %v (using keyword routing)", err)
		return FallbackRoute(query.Query)
	}

	logger.Info("Routed to %v, types %v, terms %v", routed.TargetApps, routed.ArtifactTypes, routed.SearchTerms)
	return routed
}

// classificationResponse is the JSON shape the model is asked for.
type classificationResponse struct {
	TargetApps    []string `json:"target_apps"`
	ArtifactTypes []string `json:"artifact_types"`
	SearchTerms   []string `json:"search_terms"`
}

func (r *Router) classify(ctx context.Context, query string) (domain.RoutedQuery, error) {
	content, err := r.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: loadPrompt(r.prompts, driven.PromptRoutingSystem, DefaultRoutingPrompt)},
		{Role: "user", Content: query},
	}, driven.ChatOptions{
		MaxTokens:    routingMaxTokens,
		Temperature:  routingTemperature,
		JSONResponse: true,
	})
	if err != nil {
		return domain.RoutedQuery{}, fmt.Errorf("classify query: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return domain.RoutedQuery{}, errors.New("classify query: empty response")
	}

	var resp classificationResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return domain.RoutedQuery{}, fmt.Errorf("parse classification: %w", err)
	}

	return normaliseClassification(query, resp), nil
}

// normaliseClassification drops unknown tokens and applies defaults.
func normaliseClassification(query string, resp classificationResponse) domain.RoutedQuery {
	apps := make([]domain.AppSource, 0, len(resp.TargetApps))
	for _, a := range resp.TargetApps {
		if src, err := domain.ParseSource(a); err == nil {
			apps = append(apps, src)
		}
	}

	types := make([]domain.ArtifactType, 0, len(resp.ArtifactTypes))
	for _, t := range resp.ArtifactTypes {
		if at, err := domain.ParseArtifactType(t); err == nil {
			types = append(types, at)
		}
	}

	terms := make([]string, 0, len(resp.SearchTerms))
	for _, t := range resp.SearchTerms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	if len(apps) == 0 {
		apps = []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion}
	}
	if len(types) == 0 {
		types = []domain.ArtifactType{domain.ArtifactDocument}
	}
	if len(terms) == 0 {
		terms = firstTokens(query, maxSearchTerms)
	}
	if len(terms) == 0 {
		terms = append([]string(nil), defaultSearchTerms...)
	}

	return domain.RoutedQuery{
		OriginalQuery: query,
		TargetApps:    domain.Dedupe(apps),
		ArtifactTypes: domain.Dedupe(types),
		SearchTerms:   terms,
		Filters:       map[string]any{},
	}
}

// FallbackRoute routes a query with keyword rules alone.
func FallbackRoute(query string) domain.RoutedQuery {
	lower := strings.ToLower(query)

	var apps []domain.AppSource
	var types []domain.ArtifactType
	for _, rule := range keywordRules {
		if containsAny(lower, rule.keywords) {
			apps = append(apps, rule.sources...)
			types = append(types, rule.typ)
		}
	}

	if len(apps) == 0 {
		apps = domain.AllSources()
		types = []domain.ArtifactType{domain.ArtifactDocument, domain.ArtifactRequirement}
	}

	return domain.RoutedQuery{
		OriginalQuery: query,
		TargetApps:    domain.Dedupe(apps),
		ArtifactTypes: domain.Dedupe(types),
		SearchTerms:   ExtractSearchTerms(query),
		Filters:       map[string]any{},
	}
}

// ExtractSearchTerms keeps up to five non-stop-word tokens longer than two
// characters, falling back to a fixed default set.
func ExtractSearchTerms(query string) []string {
	terms := make([]string, 0, maxSearchTerms)
	for _, w := range strings.Fields(query) {
		lw := strings.ToLower(w)
		if _, stop := stopWords[lw]; stop {
			continue
		}
		if len([]rune(w)) < minTermLength {
			continue
		}
		terms = append(terms, w)
		if len(terms) == maxSearchTerms {
			break
		}
	}
	if len(terms) == 0 {
		return append([]string(nil), defaultSearchTerms...)
	}
	return terms
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstTokens(s string, n int) []string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return fields
}

// loadPrompt returns the named prompt from the store, or fallback when the
// store is nil or the load fails.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Debug("Using built-in %s prompt", name)
		return fallback
	}
	return p
}
