package figma

import (
	"strings"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

// MaxResults caps the nodes returned per search.
const MaxResults = 20

// Node types that are reported as design artifacts.
var searchableTypes = map[string]bool{
	"FRAME":         true,
	"COMPONENT":     true,
	"COMPONENT_SET": true,
	"SECTION":       true,
}

// node is one element of a Figma document tree.
type node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Children []node `json:"children,omitempty"`
}

// fileResponse is the body of GET /files/{key}.
type fileResponse struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Document     node   `json:"document"`
}

// nodesResponse is the body of GET /files/{key}/nodes.
type nodesResponse struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Nodes        map[string]*struct {
		Document *node `json:"document"`
	} `json:"nodes"`
}

// match is a node hit together with its slash-separated path.
type match struct {
	node node
	path string
}

// findNodes walks the tree depth first and collects searchable nodes whose
// name contains any of the terms, case-insensitively. At most limit matches
// are returned.
func findNodes(root node, terms []string, limit int) []match {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	if len(lowered) == 0 || limit <= 0 {
		return nil
	}

	var out []match
	var walk func(n node, parent string) bool
	walk = func(n node, parent string) bool {
		path := n.Name
		if parent != "" {
			path = parent + "/" + n.Name
		}
		if searchableTypes[n.Type] && nameMatches(n.Name, lowered) {
			out = append(out, match{node: n, path: path})
			if len(out) == limit {
				return false
			}
		}
		for _, child := range n.Children {
			if !walk(child, path) {
				return false
			}
		}
		return true
	}
	walk(root, "")
	return out
}

func nameMatches(name string, lowered []string) bool {
	name = strings.ToLower(name)
	for _, t := range lowered {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// NodeURL returns the browser URL of a node.
func NodeURL(fileKey, nodeID string) string {
	return "https://www.figma.com/file/" + fileKey + "?node-id=" + nodeID
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func (m match) toArtifact(fileKey string, file *fileResponse) domain.Artifact {
	return domain.Artifact{
		ID:      m.node.ID,
		Source:  domain.SourceFigma,
		Type:    domain.ArtifactDesign,
		Title:   m.node.Name,
		Content: "Figma " + m.node.Type + ": " + m.path,
		URL:     NodeURL(fileKey, m.node.ID),
		Metadata: map[string]any{
			"node_type": m.node.Type,
			"path":      m.path,
			"file_key":  fileKey,
			"file_name": file.Name,
		},
		UpdatedAt: parseTime(file.LastModified),
	}
}
