package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("figma.file_key", "abc"))

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("figma.access_token", "tok"))
	require.NoError(t, store.Set("cache.redis_db", 3))
	require.NoError(t, store.Set("ai.use_ad_auth", true))
	require.NoError(t, store.Set("events.brokers", []string{"a:9092", "b:9092"}))

	assert.Equal(t, "tok", store.GetString("figma.access_token"))
	assert.Equal(t, 3, store.GetInt("cache.redis_db"))
	assert.True(t, store.GetBool("ai.use_ad_auth"))
	assert.Equal(t, []string{"a:9092", "b:9092"}, store.GetStringSlice("events.brokers"))

	// Missing and wrong-typed keys return zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, "", store.GetString("cache.redis_db"))
	assert.Equal(t, 0, store.GetInt("figma.access_token"))
	assert.False(t, store.GetBool("figma.access_token"))
	assert.Nil(t, store.GetStringSlice("figma.access_token"))
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("azure_devops.org_url", "https://dev.azure.com/contoso"))
	require.NoError(t, store.Set("azure_devops.project", "Pump"))
	require.NoError(t, store.Set("cache.redis_db", 2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[azure_devops]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://dev.azure.com/contoso", reloaded.GetString("azure_devops.org_url"))
	assert.Equal(t, "Pump", reloaded.GetString("azure_devops.project"))
	assert.Equal(t, 2, reloaded.GetInt("cache.redis_db"))
	assert.Equal(t, []string{"azure_devops.org_url", "azure_devops.project", "cache.redis_db"}, reloaded.Keys())
}

func TestConfigStore_Delete(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("notion.api_key", "secret"))

	require.NoError(t, store.Delete("notion.api_key"))

	_, ok := store.Get("notion.api_key")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("notion.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("search.connector_timeout", "30s")
			_ = store.GetString("search.connector_timeout")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "30s", store.GetString("search.connector_timeout"))
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
	})

	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, map[string]any{"d": map[string]any{"e": "x"}}, nested["c"])
}
