package driven

// ConfigStore is the key/value view over the docsync configuration.
//
// Keys use dot notation matching the TOML layout ("scheduler.tick_interval").
// Arrays of tables such as [[webhooks]] and [[teams]] are returned whole
// from Get as []map[string]any or []any.
type ConfigStore interface {
	// Get returns the raw value under key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the value as a string, or "" when unset or not a string.
	GetString(key string) string

	// GetInt returns the value as an int, or 0 when unset or not numeric.
	GetInt(key string) int

	// GetBool returns the value as a bool, or false when unset.
	GetBool(key string) bool

	// Set stores a value and persists it before returning.
	Set(key string, value any) error

	// Path describes where the configuration lives.
	Path() string
}
