package driven

// ConfigStore is the raw key/value view of config.toml with LEXRAG_*
// environment overrides layered on top. Keys are dotted, e.g.
// "index.batch_size". Overrides arrive as strings, so the typed getters
// parse strings too and return the zero value when nothing usable is set.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	// GetStringSlice also splits comma separated strings.
	GetStringSlice(key string) []string

	// Set writes key and saves the file.
	Set(key string, value any) error
	Save() error
	Load() error

	// Keys lists keys that currently have a value, sorted.
	Keys() []string
	Path() string
}
