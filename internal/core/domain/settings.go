package domain

import "time"

// Defaults applied when a setting is absent.
const (
	DefaultAzureDevOpsProject = "RiskManagement"
	DefaultAIDeployment       = "gpt-4o"
	DefaultAIAPIVersion       = "2024-02-01"
	DefaultCacheTTL           = 5 * time.Minute
	DefaultConnectorTimeout   = 30 * time.Second
	DefaultKafkaTopic         = "artifact-search.searches"
)

// AzureDevOpsSettings holds work tracking credentials.
type AzureDevOpsSettings struct {
	// OrgURL is the organisation URL, e.g. https://dev.azure.com/contoso.
	OrgURL  string
	PAT     string
	Project string
}

// IsConfigured returns true if the organisation and token are set.
func (s AzureDevOpsSettings) IsConfigured() bool {
	return s.OrgURL != "" && s.PAT != ""
}

// FigmaSettings holds design tool credentials.
type FigmaSettings struct {
	AccessToken string
	FileKey     string
}

// IsConfigured returns true if the token and file key are set.
func (s FigmaSettings) IsConfigured() bool {
	return s.AccessToken != "" && s.FileKey != ""
}

// NotionSettings holds documentation workspace credentials.
type NotionSettings struct {
	APIKey     string
	DatabaseID string
}

// IsConfigured returns true if the key and database are set.
func (s NotionSettings) IsConfigured() bool {
	return s.APIKey != "" && s.DatabaseID != ""
}

// IcePanelSettings holds architecture modelling credentials.
type IcePanelSettings struct {
	APIKey      string
	LandscapeID string
}

// IsConfigured returns true if the key and landscape are set.
func (s IcePanelSettings) IsConfigured() bool {
	return s.APIKey != "" && s.LandscapeID != ""
}

// AISettings holds the Azure OpenAI endpoint used for routing and summaries.
type AISettings struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	// UseADAuth selects Azure AD client-credential tokens when no key is set.
	UseADAuth    bool
	TenantID     string
	ClientID     string
	ClientSecret string
}

// IsConfigured returns true if an endpoint and some form of auth are set.
func (s AISettings) IsConfigured() bool {
	return s.Endpoint != "" && (s.APIKey != "" || s.UseADAuth)
}

// CacheSettings selects the response cache backend.
type CacheSettings struct {
	// RedisAddr switches the cache to Redis when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// HistorySettings selects where search records are kept.
type HistorySettings struct {
	// DSN is a postgres:// URL; empty selects the local SQLite file.
	DSN     string
	Enabled bool
}

// EventSettings configures the search event stream.
type EventSettings struct {
	Brokers []string
	Topic   string
}

// TelemetrySettings configures OpenTelemetry export.
type TelemetrySettings struct {
	// OTLPEndpoint is a gRPC host:port; empty disables export.
	OTLPEndpoint string
	Insecure     bool
}

// SearchSettings holds orchestration behaviour.
type SearchSettings struct {
	// ConnectorTimeout bounds each connector call; zero disables the bound.
	ConnectorTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	AzureDevOps AzureDevOpsSettings
	Figma       FigmaSettings
	Notion      NotionSettings
	IcePanel    IcePanelSettings
	AI          AISettings
	Cache       CacheSettings
	History     HistorySettings
	Events      EventSettings
	Telemetry   TelemetrySettings
	Search      SearchSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Sources are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		AzureDevOps: AzureDevOpsSettings{Project: DefaultAzureDevOpsProject},
		AI: AISettings{
			Deployment: DefaultAIDeployment,
			APIVersion: DefaultAIAPIVersion,
			UseADAuth:  true,
		},
		Cache:   CacheSettings{TTL: DefaultCacheTTL},
		History: HistorySettings{Enabled: true},
		Events:  EventSettings{Topic: DefaultKafkaTopic},
		Search:  SearchSettings{ConnectorTimeout: DefaultConnectorTimeout},
	}
}

// IsSourceConfigured reports the configuration state of a single source.
func (s AppSettings) IsSourceConfigured(src AppSource) bool {
	switch src {
	case SourceAzureDevOps:
		return s.AzureDevOps.IsConfigured()
	case SourceFigma:
		return s.Figma.IsConfigured()
	case SourceNotion:
		return s.Notion.IsConfigured()
	case SourceIcePanel:
		return s.IcePanel.IsConfigured()
	default:
		return false
	}
}
