package azuredevops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

const riskDescription = `<div><ul>
<li><strong>Severity:</strong> Critical</li>
<li><strong>Probability (Before Controls):</strong> Occasional</li>
<li><strong>Probability (After Controls):</strong> Remote</li>
</ul></div>`

// fakeServer serves the WIQL and work item endpoints of a single project.
type fakeServer struct {
	t         *testing.T
	wiqlIDs   []int
	items     map[int]map[string]any
	status    int
	lastWIQL  string
	batchIDs  string
	wiqlCalls atomic.Int32
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":pat"))
	assert.Equal(f.t, want, r.Header.Get("Authorization"))
	assert.Equal(f.t, APIVersion, r.URL.Query().Get("api-version"))

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/RiskManagement/_apis/wit/wiql":
		f.wiqlCalls.Add(1)
		var body map[string]string
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.lastWIQL = body["query"]
		refs := make([]map[string]int, len(f.wiqlIDs))
		for i, id := range f.wiqlIDs {
			refs[i] = map[string]int{"id": id}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"workItems": refs})

	case r.Method == http.MethodGet && r.URL.Path == "/RiskManagement/_apis/wit/workitems":
		f.batchIDs = r.URL.Query().Get("ids")
		var value []map[string]any
		for _, part := range strings.Split(f.batchIDs, ",") {
			for id, fields := range f.items {
				if part == jsonID(id) {
					value = append(value, map[string]any{"id": id, "fields": fields})
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"value": value})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/RiskManagement/_apis/wit/workitems/"):
		idStr := strings.TrimPrefix(r.URL.Path, "/RiskManagement/_apis/wit/workitems/")
		for id, fields := range f.items {
			if jsonID(id) == idStr {
				_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "fields": fields})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func jsonID(id int) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func newTestConnector(t *testing.T, f *fakeServer) *Connector {
	t.Helper()
	f.t = t
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	c := New(domain.AzureDevOpsSettings{OrgURL: server.URL + "/", PAT: "pat"})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func routed(terms ...string) domain.RoutedQuery {
	return domain.RoutedQuery{OriginalQuery: strings.Join(terms, " "), SearchTerms: terms}
}

func TestConnector_IsConfigured(t *testing.T) {
	assert.False(t, New(domain.AzureDevOpsSettings{}).IsConfigured())
	assert.False(t, New(domain.AzureDevOpsSettings{OrgURL: "https://dev.azure.com/x"}).IsConfigured())
	assert.True(t, New(domain.AzureDevOpsSettings{OrgURL: "https://dev.azure.com/x", PAT: "p"}).IsConfigured())
	assert.Equal(t, domain.SourceAzureDevOps, New(domain.AzureDevOpsSettings{}).Source())
}

func TestConnector_Search(t *testing.T) {
	f := &fakeServer{
		wiqlIDs: []int{7, 3},
		items: map[int]map[string]any{
			7: {
				fieldTitle:       "Over-infusion due to free flow",
				fieldDescription: riskDescription,
				fieldType:        "Risk",
				fieldState:       "Active",
				fieldAssignedTo:  map[string]any{"displayName": "Dana Reviewer"},
				fieldTags:        "hazard; pump",
				fieldCreated:     "2024-01-10T08:00:00Z",
				fieldChanged:     "2024-02-01T12:30:00.123Z",
			},
			3: {
				fieldTitle: "Dose limit alarm",
				fieldType:  "User Story",
				fieldState: "New",
			},
		},
	}
	c := newTestConnector(t, f)

	got, err := c.Search(context.Background(), routed("infusion", "O'Brien"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Contains(t, f.lastWIQL, "[System.TeamProject] = 'RiskManagement'")
	assert.Contains(t, f.lastWIQL, "[System.Title] CONTAINS 'infusion' OR [System.Description] CONTAINS 'infusion'")
	assert.Contains(t, f.lastWIQL, "CONTAINS 'O''Brien'")
	assert.Equal(t, "7,3", f.batchIDs)

	var risk, story domain.Artifact
	for _, a := range got {
		switch a.ID {
		case "7":
			risk = a
		case "3":
			story = a
		}
	}

	assert.Equal(t, domain.SourceAzureDevOps, risk.Source)
	assert.Equal(t, domain.ArtifactRisk, risk.Type)
	assert.Equal(t, "Over-infusion due to free flow", risk.Title)
	assert.Equal(t, "Severity: Critical\nProbability (Before Controls): Occasional\nProbability (After Controls): Remote", risk.Content)
	assert.True(t, strings.HasSuffix(risk.URL, "/RiskManagement/_workitems/edit/7"))
	assert.Equal(t, "Dana Reviewer", risk.Metadata["assigned_to"])
	assert.Equal(t, "hazard; pump", risk.Metadata["tags"])
	assert.Equal(t, "critical", risk.Metadata["severity"])
	assert.Equal(t, "occasional", risk.Metadata["probability"])
	assert.Equal(t, "high", risk.Metadata["risk_level"])
	require.NotNil(t, risk.UpdatedAt)
	assert.Equal(t, 2024, risk.UpdatedAt.Year())
	require.NotNil(t, risk.CreatedAt)

	assert.Equal(t, domain.ArtifactRequirement, story.Type)
	assert.Nil(t, story.UpdatedAt)
	assert.NotContains(t, story.Metadata, "severity")
}

func TestConnector_Search_CapsBatchAtMaxResults(t *testing.T) {
	ids := make([]int, 30)
	for i := range ids {
		ids[i] = i + 1
	}
	f := &fakeServer{wiqlIDs: ids, items: map[int]map[string]any{}}
	c := newTestConnector(t, f)

	_, err := c.Search(context.Background(), routed("alarm"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(f.batchIDs, ","), MaxResults)
}

func TestConnector_Search_FailuresYieldEmpty(t *testing.T) {
	f := &fakeServer{status: http.StatusInternalServerError}
	c := newTestConnector(t, f)

	got, err := c.Search(context.Background(), routed("alarm"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConnector_Search_NoMatchesSkipsBatch(t *testing.T) {
	f := &fakeServer{items: map[int]map[string]any{}}
	c := newTestConnector(t, f)

	got, err := c.Search(context.Background(), routed("nothing"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.batchIDs)
}

func TestConnector_Search_Unconfigured(t *testing.T) {
	c := New(domain.AzureDevOpsSettings{})
	got, err := c.Search(context.Background(), routed("x"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConnector_GetByID(t *testing.T) {
	f := &fakeServer{items: map[int]map[string]any{
		42: {fieldTitle: "Verify alarm", fieldType: "Test Case", fieldState: "Ready"},
	}}
	c := newTestConnector(t, f)

	a, err := c.GetByID(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", a.ID)
	assert.Equal(t, domain.ArtifactTestCase, a.Type)
	assert.Equal(t, "Ready", a.Metadata["state"])
	assert.NotContains(t, a.Metadata, "assigned_to")

	_, err = c.GetByID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.GetByID(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnector_TestConnection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", 0, false},
		{"not found is healthy", http.StatusNotFound, false},
		{"unauthorized", http.StatusUnauthorized, true},
		{"sign-in page", http.StatusNonAuthoritativeInfo, true},
		{"server error", http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConnector(t, &fakeServer{status: tt.status, items: map[int]map[string]any{}})
			err := c.TestConnection(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnector_Close(t *testing.T) {
	c := newTestConnector(t, &fakeServer{})
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.TestConnection(context.Background()), domain.ErrConnectorClosed)
	_, err := c.GetByID(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMapWorkItemType(t *testing.T) {
	tests := map[string]domain.ArtifactType{
		"Bug":        domain.ArtifactWorkItem,
		"Task":       domain.ArtifactWorkItem,
		"User Story": domain.ArtifactRequirement,
		"Feature":    domain.ArtifactRequirement,
		"Epic":       domain.ArtifactRequirement,
		"Test Case":  domain.ArtifactTestCase,
		"Risk":       domain.ArtifactRisk,
		"Mitigation": domain.ArtifactMitigation,
		"Impediment": domain.ArtifactWorkItem,
		"":           domain.ArtifactWorkItem,
	}
	for in, want := range tests {
		assert.Equal(t, want, mapWorkItemType(in), in)
	}
}

func TestRiskMetadata(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "seeded html",
			in:   riskDescription,
			want: map[string]any{"severity": "critical", "probability": "occasional", "risk_level": "high"},
		},
		{
			name: "ordinal prefixes inline",
			in:   "<p>Severity: 2 - Minor</p><p>Probability: 2 - Remote</p>",
			want: map[string]any{"severity": "minor", "probability": "remote", "risk_level": "low"},
		},
		{
			name: "severity only",
			in:   "Severity: Serious",
			want: map[string]any{"severity": "serious"},
		},
		{
			name: "unknown values",
			in:   "Severity: Huge Probability: Often",
			want: map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskMetadata(tt.in))
		})
	}
}
