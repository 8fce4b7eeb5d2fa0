package connectors

import (
	"fmt"

	"github.com/custodia-labs/artifact-search/internal/connectors/azuredevops"
	"github.com/custodia-labs/artifact-search/internal/connectors/figma"
	"github.com/custodia-labs/artifact-search/internal/connectors/icepanel"
	"github.com/custodia-labs/artifact-search/internal/connectors/notion"
	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// New creates the connector for one source. cache may be nil.
func New(src domain.AppSource, settings *domain.AppSettings, cache driven.Cache) (driven.Connector, error) {
	switch src {
	case domain.SourceAzureDevOps:
		return azuredevops.New(settings.AzureDevOps), nil
	case domain.SourceFigma:
		return figma.New(settings.Figma, cache, settings.Cache.TTL), nil
	case domain.SourceNotion:
		return notion.New(settings.Notion), nil
	case domain.SourceIcePanel:
		return icepanel.New(settings.IcePanel), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, src)
	}
}

// NewFromSettings creates one connector per source in canonical order,
// configured or not. Connectors that cache share the given cache.
func NewFromSettings(settings *domain.AppSettings, cache driven.Cache) []driven.Connector {
	out := make([]driven.Connector, 0, len(domain.AllSources()))
	for _, src := range domain.AllSources() {
		c, err := New(src, settings, cache)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
