package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"simple", "hazard analysis", false},
		{"single char", "x", false},
		{"max length", strings.Repeat("a", MaxQueryLength), false},
		{"empty", "", true},
		{"whitespace only", "   \t", true},
		{"too long", strings.Repeat("a", MaxQueryLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SearchQuery{Query: tt.query}.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestArtifact_EffectiveTime(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got, ok := Artifact{CreatedAt: &created, UpdatedAt: &updated}.EffectiveTime()
	assert.True(t, ok)
	assert.Equal(t, updated, got)

	got, ok = Artifact{CreatedAt: &created}.EffectiveTime()
	assert.True(t, ok)
	assert.Equal(t, created, got)

	_, ok = Artifact{}.EffectiveTime()
	assert.False(t, ok)
}

func TestArtifact_Key(t *testing.T) {
	a := Artifact{ID: "42", Source: SourceAzureDevOps}
	assert.Equal(t, "azure_devops:42", a.Key())
}

func TestParseArtifactType(t *testing.T) {
	for _, at := range AllArtifactTypes() {
		got, err := ParseArtifactType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}
	_, err := ParseArtifactType("spreadsheet")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]AppSource{SourceNotion, SourceAzureDevOps, SourceNotion, SourceFigma, SourceAzureDevOps})
	assert.Equal(t, []AppSource{SourceNotion, SourceAzureDevOps, SourceFigma}, got)
	assert.Empty(t, Dedupe([]string(nil)))
}

func TestRoutedQuery_Targets(t *testing.T) {
	r := RoutedQuery{TargetApps: []AppSource{SourceFigma}, ArtifactTypes: []ArtifactType{ArtifactDesign}}
	assert.True(t, r.Targets(SourceFigma))
	assert.False(t, r.Targets(SourceNotion))
	assert.True(t, r.WantsType(ArtifactDesign))
	assert.False(t, r.WantsType(ArtifactRisk))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "héé...", Truncate("héééé", 3))
}

func TestSearchResult_JSONShape(t *testing.T) {
	res := SearchResult{
		Query:            "risk",
		Artifacts:        []Artifact{{ID: "1", Source: SourceNotion, Type: ArtifactRisk, Title: "R"}},
		SourcesSearched:  []AppSource{SourceNotion},
		TotalResults:     1,
		SearchDurationMS: 12.5,
		Summary:          "Found 1 artifacts across multiple sources.",
	}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"query", "artifacts", "sources_searched", "total_results", "search_duration_ms", "summary"} {
		assert.Contains(t, raw, key)
	}
	first := raw["artifacts"].([]any)[0].(map[string]any)
	assert.Equal(t, "risk", first["artifact_type"])
}

func TestSummaryTexts(t *testing.T) {
	assert.Equal(t, "Found 3 artifacts across multiple sources.", CountSummary(3))
	assert.Equal(t, "No matching artifacts found.", SummaryNoResults)
	assert.Equal(t, "No configured data sources available for this query.", SummaryNoSources)
}

func TestDurationMS(t *testing.T) {
	assert.InDelta(t, 1.5, DurationMS(1500*time.Microsecond), 1e-9)
}
