package services

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// settingKind selects how a raw value is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindInt
	kindDuration
	kindList
)

// setting describes one configuration key and its environment override.
type setting struct {
	key  string
	env  string
	kind settingKind
}

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
var settingsTable = []setting{
	{"azure_devops.org_url", "AZURE_DEVOPS_ORG_URL", kindString},
	{"azure_devops.pat", "AZURE_DEVOPS_PAT", kindString},
	{"azure_devops.project", "AZURE_DEVOPS_PROJECT", kindString},
	{"figma.access_token", "FIGMA_ACCESS_TOKEN", kindString},
	{"figma.file_key", "FIGMA_FILE_KEY", kindString},
	{"notion.api_key", "NOTION_API_KEY", kindString},
	{"notion.database_id", "NOTION_DATABASE_ID", kindString},
	{"icepanel.api_key", "ICEPANEL_API_KEY", kindString},
	{"icepanel.landscape_id", "ICEPANEL_LANDSCAPE_ID", kindString},
	{"ai.endpoint", "AZURE_AI_ENDPOINT", kindString},
	{"ai.api_key", "AZURE_AI_API_KEY", kindString},
	{"ai.deployment", "AZURE_AI_DEPLOYMENT", kindString},
	{"ai.api_version", "AZURE_AI_API_VERSION", kindString},
	{"ai.use_ad_auth", "AZURE_AI_USE_AD_AUTH", kindBool},
	{"ai.tenant_id", "AZURE_TENANT_ID", kindString},
	{"ai.client_id", "AZURE_CLIENT_ID", kindString},
	{"ai.client_secret", "AZURE_CLIENT_SECRET", kindString},
	{"cache.redis_addr", "REDIS_ADDR", kindString},
	{"cache.redis_password", "REDIS_PASSWORD", kindString},
	{"cache.redis_db", "REDIS_DB", kindInt},
	{"cache.ttl", "CACHE_TTL", kindDuration},
	{"history.enabled", "HISTORY_ENABLED", kindBool},
	{"history.dsn", "HISTORY_DSN", kindString},
	{"events.brokers", "KAFKA_BROKERS", kindList},
	{"events.topic", "KAFKA_TOPIC", kindString},
	{"telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", kindString},
	{"telemetry.insecure", "OTEL_EXPORTER_OTLP_INSECURE", kindBool},
	{"search.connector_timeout", "CONNECTOR_TIMEOUT", kindDuration},
}

// SettingsService reads settings from the config store, with environment
// variables taking precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case ValidateAIConfig always succeeds.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	cacheTTL, err := s.duration("cache.ttl", d.Cache.TTL)
	if err != nil {
		return nil, err
	}
	timeout, err := s.duration("search.connector_timeout", d.Search.ConnectorTimeout)
	if err != nil {
		return nil, err
	}
	redisDB, err := s.integer("cache.redis_db", d.Cache.RedisDB)
	if err != nil {
		return nil, err
	}
	useAD, err := s.boolean("ai.use_ad_auth", d.AI.UseADAuth)
	if err != nil {
		return nil, err
	}
	historyOn, err := s.boolean("history.enabled", d.History.Enabled)
	if err != nil {
		return nil, err
	}
	insecure, err := s.boolean("telemetry.insecure", d.Telemetry.Insecure)
	if err != nil {
		return nil, err
	}

	return &domain.AppSettings{
		AzureDevOps: domain.AzureDevOpsSettings{
			OrgURL:  strings.TrimRight(s.str("azure_devops.org_url", ""), "/"),
			PAT:     s.str("azure_devops.pat", ""),
			Project: s.str("azure_devops.project", d.AzureDevOps.Project),
		},
		Figma: domain.FigmaSettings{
			AccessToken: s.str("figma.access_token", ""),
			FileKey:     s.str("figma.file_key", ""),
		},
		Notion: domain.NotionSettings{
			APIKey:     s.str("notion.api_key", ""),
			DatabaseID: s.str("notion.database_id", ""),
		},
		IcePanel: domain.IcePanelSettings{
			APIKey:      s.str("icepanel.api_key", ""),
			LandscapeID: s.str("icepanel.landscape_id", ""),
		},
		AI: domain.AISettings{
			Endpoint:     strings.TrimRight(s.str("ai.endpoint", ""), "/"),
			APIKey:       s.str("ai.api_key", ""),
			Deployment:   s.str("ai.deployment", d.AI.Deployment),
			APIVersion:   s.str("ai.api_version", d.AI.APIVersion),
			UseADAuth:    useAD,
			TenantID:     s.str("ai.tenant_id", ""),
			ClientID:     s.str("ai.client_id", ""),
			ClientSecret: s.str("ai.client_secret", ""),
		},
		Cache: domain.CacheSettings{
			RedisAddr:     s.str("cache.redis_addr", ""),
			RedisPassword: s.str("cache.redis_password", ""),
			RedisDB:       redisDB,
			TTL:           cacheTTL,
		},
		History: domain.HistorySettings{
			DSN:     s.str("history.dsn", ""),
			Enabled: historyOn,
		},
		Events: domain.EventSettings{
			Brokers: s.list("events.brokers"),
			Topic:   s.str("events.topic", d.Events.Topic),
		},
		Telemetry: domain.TelemetrySettings{
			OTLPEndpoint: s.str("telemetry.otlp_endpoint", ""),
			Insecure:     insecure,
		},
		Search: domain.SearchSettings{ConnectorTimeout: timeout},
	}, nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch def.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		typed = b
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 30s", domain.ErrInvalidInput, key)
		}
		typed = value
	case kindList:
		typed = splitList(value)
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists every recognised setting key.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsTable))
	for i, def := range settingsTable {
		keys[i] = def.key
	}
	slices.Sort(keys)
	return keys
}

// Value returns the effective raw value of key. Unknown keys report false.
func (s *SettingsService) Value(key string) (string, bool) {
	if _, ok := lookupSetting(key); !ok {
		return "", false
	}
	return s.raw(key)
}

// EnvVar returns the environment variable that overrides key.
func (s *SettingsService) EnvVar(key string) string {
	return EnvVar(key)
}

// ValidateAIConfig validates the current AI settings by pinging the endpoint.
func (s *SettingsService) ValidateAIConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.AI)
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	def, _ := lookupSetting(key)
	return def.env
}

func lookupSetting(key string) (setting, bool) {
	for _, def := range settingsTable {
		if def.key == key {
			return def, true
		}
	}
	return setting{}, false
}

// raw returns the environment override, else the stored value as text.
func (s *SettingsService) raw(key string) (string, bool) {
	if def, ok := lookupSetting(key); ok && def.env != "" {
		if v, ok := s.lookupEnv(def.env); ok && v != "" {
			return v, true
		}
	}
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	switch v := val.(type) {
	case string:
		return v, v != ""
	case []any, []string:
		return strings.Join(s.configStore.GetStringSlice(key), ","), true
	default:
		return fmt.Sprint(v), true
	}
}

func (s *SettingsService) str(key, fallback string) string {
	if v, ok := s.raw(key); ok {
		return v
	}
	return fallback
}

func (s *SettingsService) boolean(key string, fallback bool) (bool, error) {
	v, ok := s.raw(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %q is not a boolean", domain.ErrInvalidInput, key, v)
	}
	return b, nil
}

func (s *SettingsService) integer(key string, fallback int) (int, error) {
	v, ok := s.raw(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not an integer", domain.ErrInvalidInput, key, v)
	}
	return n, nil
}

func (s *SettingsService) duration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := s.raw(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a duration", domain.ErrInvalidInput, key, v)
	}
	return d, nil
}

func (s *SettingsService) list(key string) []string {
	v, ok := s.raw(key)
	if !ok {
		return nil
	}
	return splitList(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
