package driven

// ConfigStore persists settings under dotted keys such as "figma.file_key".
// Values round-trip through TOML, so numbers may come back as int64.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	// GetStringSlice returns a list value, or nil when key is absent or not a list.
	GetStringSlice(key string) []string

	// Set stores value under key and persists the file.
	Set(key string, value any) error

	// Path returns the backing file path.
	Path() string
}
