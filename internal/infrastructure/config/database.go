package config

// DatabaseConfig holds the request journal database configuration
type DatabaseConfig struct {
	// Enabled controls whether the journal is written at all
	Enabled bool `mapstructure:"enabled"`

	// SQLite database file path (":memory:" for an in-memory journal)
	Path string `mapstructure:"path"`
}
