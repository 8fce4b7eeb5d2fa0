package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	seed := map[string]any{"figma.file_key": "abc"}
	store := NewConfigStore(seed)

	assert.Equal(t, "abc", store.GetString("figma.file_key"))

	// Seed is copied, not aliased.
	seed["figma.file_key"] = "changed"
	assert.Equal(t, "abc", store.GetString("figma.file_key"))
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":        "hello",
		"int":        42,
		"int64":      int64(7),
		"float":      float64(3),
		"int_str":    "12",
		"bool":       true,
		"bool_str":   "true",
		"slice":      []string{"a", "b"},
		"any_slice":  []any{"x", 1, "y"},
		"csv":        "k1:9092, k2:9092",
		"empty_csv":  "",
		"unexpected": struct{}{},
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "hello"},
		{"string from int", store.GetString("int"), "42"},
		{"string from bool", store.GetString("bool"), "true"},
		{"string missing", store.GetString("missing"), ""},
		{"int", store.GetInt("int"), 42},
		{"int64", store.GetInt("int64"), 7},
		{"float", store.GetInt("float"), 3},
		{"int from string", store.GetInt("int_str"), 12},
		{"int unexpected", store.GetInt("unexpected"), 0},
		{"bool", store.GetBool("bool"), true},
		{"bool from string", store.GetBool("bool_str"), true},
		{"bool missing", store.GetBool("missing"), false},
		{"slice", store.GetStringSlice("slice"), []string{"a", "b"}},
		{"any slice skips non-strings", store.GetStringSlice("any_slice"), []string{"x", "y"}},
		{"comma separated", store.GetStringSlice("csv"), []string{"k1:9092", "k2:9092"}},
		{"empty string", store.GetStringSlice("empty_csv"), []string(nil)},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("counter", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
