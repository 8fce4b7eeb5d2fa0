package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestSourcesCmd(t *testing.T) {
	search, _ := setupTestServices(t)
	search.configured = []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion}

	out, err := executeCommand(t, "sources")
	require.NoError(t, err)

	assert.Contains(t, out, "Azure DevOps")
	assert.Contains(t, out, "IcePanel")
	assert.Contains(t, out, "✓ configured")
	assert.Contains(t, out, "✗ not configured")
}

func TestSourcesCmd_JSON(t *testing.T) {
	search, _ := setupTestServices(t)
	search.configured = []domain.AppSource{domain.SourceFigma}

	out, err := executeCommand(t, "sources", "--json")
	require.NoError(t, err)

	var got []domain.SourceStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 4)
	for _, st := range got {
		assert.Equal(t, st.Source == domain.SourceFigma, st.Configured, st.Source)
	}
}

func TestHealthCmd_AllHealthy(t *testing.T) {
	search, _ := setupTestServices(t)
	search.configured = []domain.AppSource{domain.SourceAzureDevOps, domain.SourceFigma}
	search.health = map[domain.AppSource]bool{domain.SourceAzureDevOps: true, domain.SourceFigma: true}

	out, err := executeCommand(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Azure DevOps")
	assert.Contains(t, out, "✓ connected")
	assert.NotContains(t, out, "unreachable")
}

func TestHealthCmd_Unhealthy(t *testing.T) {
	search, _ := setupTestServices(t)
	search.configured = []domain.AppSource{domain.SourceAzureDevOps, domain.SourceNotion}
	search.health = map[domain.AppSource]bool{domain.SourceAzureDevOps: true}

	out, err := executeCommand(t, "health")
	assert.ErrorIs(t, err, errUnhealthy)
	assert.Contains(t, out, "✗ unreachable")
}

func TestHealthCmd_NoSources(t *testing.T) {
	search, _ := setupTestServices(t)
	search.configured = nil

	out, err := executeCommand(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "No sources configured.")
}
