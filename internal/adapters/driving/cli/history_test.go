package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestHistoryCmd(t *testing.T) {
	search, _ := setupTestServices(t)
	search.records = []domain.SearchRecord{
		{
			ID:              "r1",
			Query:           "pump occlusion risks",
			SourcesSearched: []domain.AppSource{domain.SourceAzureDevOps},
			TotalResults:    12,
			DurationMS:      431.7,
			CreatedAt:       time.Now(),
		},
	}

	out, err := executeCommand(t, "history", "-n", "5")
	require.NoError(t, err)

	assert.Equal(t, 5, search.lastLimit)
	assert.Contains(t, out, "pump occlusion risks")
	assert.Contains(t, out, " 12 results")
	assert.Contains(t, out, "432ms")
	assert.Contains(t, out, "Azure DevOps")
}

func TestHistoryCmd_DefaultLimit(t *testing.T) {
	search, _ := setupTestServices(t)

	_, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Equal(t, 10, search.lastLimit)
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No searches recorded.")
}

func TestHistoryCmd_JSON(t *testing.T) {
	search, _ := setupTestServices(t)
	search.records = []domain.SearchRecord{{ID: "r1", Query: "q", TotalResults: 3}}

	out, err := executeCommand(t, "history", "--json")
	require.NoError(t, err)

	var got []domain.SearchRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].TotalResults)
}

func TestHistoryCmd_InvalidLimit(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "history", "--limit", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryCmd_ServiceError(t *testing.T) {
	search, _ := setupTestServices(t)
	search.err = errors.New("db closed")

	_, err := executeCommand(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load history: db closed")
}
