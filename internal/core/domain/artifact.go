package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactType classifies what an artifact represents.
type ArtifactType string

// Supported artifact types.
const (
	ArtifactRequirement  ArtifactType = "requirement"
	ArtifactRisk         ArtifactType = "risk"
	ArtifactMitigation   ArtifactType = "mitigation"
	ArtifactDesign       ArtifactType = "design"
	ArtifactArchitecture ArtifactType = "architecture"
	ArtifactWorkItem     ArtifactType = "work_item"
	ArtifactTestCase     ArtifactType = "test_case"
	ArtifactDocument     ArtifactType = "document"
)

// AllArtifactTypes returns every artifact type.
func AllArtifactTypes() []ArtifactType {
	return []ArtifactType{
		ArtifactRequirement, ArtifactRisk, ArtifactMitigation, ArtifactDesign,
		ArtifactArchitecture, ArtifactWorkItem, ArtifactTestCase, ArtifactDocument,
	}
}

// ParseArtifactType converts a wire value into an ArtifactType.
func ParseArtifactType(s string) (ArtifactType, error) {
	t := ArtifactType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown artifact type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// IsValid returns true if the artifact type is recognised.
func (t ArtifactType) IsValid() bool {
	switch t {
	case ArtifactRequirement, ArtifactRisk, ArtifactMitigation, ArtifactDesign,
		ArtifactArchitecture, ArtifactWorkItem, ArtifactTestCase, ArtifactDocument:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (t ArtifactType) String() string {
	return string(t)
}

// Artifact is a single item returned by a backend, normalised to one shape.
type Artifact struct {
	// ID is unique within Source.
	ID string `json:"id"`

	Source AppSource    `json:"source"`
	Type   ArtifactType `json:"artifact_type"`
	Title  string       `json:"title"`

	// Content is the textual body; may be empty.
	Content string `json:"content"`

	// URL links back to the item in its backend UI.
	URL string `json:"url,omitempty"`

	// Metadata holds backend-specific fields (state, tags, node path ...).
	Metadata map[string]any `json:"metadata"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Key returns the global identity of the artifact.
func (a Artifact) Key() string {
	return string(a.Source) + ":" + a.ID
}

// EffectiveTime returns the time used for ranking: UpdatedAt, else CreatedAt.
// The second return value is false when neither is set.
func (a Artifact) EffectiveTime() (time.Time, bool) {
	if a.UpdatedAt != nil {
		return *a.UpdatedAt, true
	}
	if a.CreatedAt != nil {
		return *a.CreatedAt, true
	}
	return time.Time{}, false
}

// Truncate returns s cut to at most n runes, with "..." appended when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
