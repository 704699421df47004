package common

// Logger is the engine's logging port. Implementations receive a level
// ("debug", "info", "warn", "error"), a message, and structured metadata.
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// NopLogger discards everything. Used when no logger is configured.
type NopLogger struct{}

func (NopLogger) Log(level, message string, metadata map[string]interface{}) {}
