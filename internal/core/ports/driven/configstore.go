package driven

// ConfigStore reads and writes persistent configuration values.
type ConfigStore interface {
	// GetString returns the value for key, or the fallback when unset.
	GetString(key, fallback string) string

	// GetInt returns the value for key, or the fallback when unset or not
	// an integer.
	GetInt(key string, fallback int) int

	// GetBool returns the value for key, or the fallback when unset.
	GetBool(key string, fallback bool) bool

	// Set stores a value and persists the store.
	Set(key string, value any) error
}
