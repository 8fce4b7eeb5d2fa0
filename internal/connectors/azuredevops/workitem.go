package azuredevops

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/normalisers/html"
)

// Work item field reference names.
const (
	fieldTitle       = "System.Title"
	fieldDescription = "System.Description"
	fieldType        = "System.WorkItemType"
	fieldState       = "System.State"
	fieldAssignedTo  = "System.AssignedTo"
	fieldTags        = "System.Tags"
	fieldCreated     = "System.CreatedDate"
	fieldChanged     = "System.ChangedDate"
)

// workItemTypes maps Azure DevOps work item types to artifact types.
var workItemTypes = map[string]domain.ArtifactType{
	"Bug":        domain.ArtifactWorkItem,
	"Task":       domain.ArtifactWorkItem,
	"User Story": domain.ArtifactRequirement,
	"Feature":    domain.ArtifactRequirement,
	"Epic":       domain.ArtifactRequirement,
	"Test Case":  domain.ArtifactTestCase,
	"Risk":       domain.ArtifactRisk,
	"Mitigation": domain.ArtifactMitigation,
}

// mapWorkItemType defaults to work_item for unknown types.
func mapWorkItemType(t string) domain.ArtifactType {
	if at, ok := workItemTypes[t]; ok {
		return at
	}
	return domain.ArtifactWorkItem
}

var (
	severityLine    = regexp.MustCompile(`(?i)severity:\s*(?:\d+\s*-\s*)?([a-z]+)`)
	probabilityLine = regexp.MustCompile(`(?i)probability(?:\s*\(before controls\))?:\s*(?:\d+\s*-\s*)?([a-z]+)`)
)

// riskMetadata extracts severity and probability from a risk description.
// Probability before controls is preferred when several are listed.
func riskMetadata(description string) map[string]any {
	text := html.ToText(description)
	out := map[string]any{}

	var sev domain.RiskSeverity
	if m := severityLine.FindStringSubmatch(text); m != nil {
		if s, err := domain.ParseRiskSeverity(m[1]); err == nil {
			sev = s
			out["severity"] = string(s)
		}
	}
	var prob domain.RiskProbability
	if m := probabilityLine.FindStringSubmatch(text); m != nil {
		if p, err := domain.ParseRiskProbability(m[1]); err == nil {
			prob = p
			out["probability"] = string(p)
		}
	}
	if sev != "" && prob != "" {
		out["risk_level"] = string(domain.ClassifyRisk(sev, prob))
	}
	return out
}

// toArtifact converts a work item. detailed adds assignee and tags.
func (c *Client) toArtifact(item workItem, detailed bool) domain.Artifact {
	f := item.Fields
	witType := stringField(f, fieldType)
	description := stringField(f, fieldDescription)

	meta := map[string]any{
		"work_item_type": witType,
		"state":          stringField(f, fieldState),
	}
	if detailed {
		meta["assigned_to"] = displayName(f[fieldAssignedTo])
		meta["tags"] = stringField(f, fieldTags)
	}
	artifactType := mapWorkItemType(witType)
	if artifactType == domain.ArtifactRisk {
		for k, v := range riskMetadata(description) {
			meta[k] = v
		}
	}

	return domain.Artifact{
		ID:        fmt.Sprint(item.ID),
		Source:    domain.SourceAzureDevOps,
		Type:      artifactType,
		Title:     stringField(f, fieldTitle),
		Content:   html.ToText(description),
		URL:       c.WebURL(item.ID),
		Metadata:  meta,
		CreatedAt: timeField(f, fieldCreated),
		UpdatedAt: timeField(f, fieldChanged),
	}
}

func stringField(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

// displayName reads an identity reference, which may be an object or a string.
func displayName(v any) string {
	switch id := v.(type) {
	case map[string]any:
		s, _ := id["displayName"].(string)
		return s
	case string:
		return id
	default:
		return ""
	}
}

func timeField(f map[string]any, key string) *time.Time {
	s := stringField(f, key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// buildWIQL matches every term against title and description.
func buildWIQL(project string, terms []string) string {
	clauses := make([]string, 0, len(terms))
	for _, term := range terms {
		t := escapeWIQL(term)
		clauses = append(clauses, fmt.Sprintf("[System.Title] CONTAINS '%s' OR [System.Description] CONTAINS '%s'", t, t))
	}
	return fmt.Sprintf(`SELECT [System.Id], [System.Title], [System.Description],
       [System.WorkItemType], [System.State], [System.CreatedDate]
FROM WorkItems
WHERE [System.TeamProject] = '%s'
AND (%s)
ORDER BY [System.ChangedDate] DESC`, escapeWIQL(project), strings.Join(clauses, " OR "))
}

func escapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
