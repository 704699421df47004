package config

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Engine defaults
	if cfg.Engine.TickRate == 0 {
		cfg.Engine.TickRate = 10
	}
	if cfg.Engine.DefaultBatchCapacity == 0 {
		cfg.Engine.DefaultBatchCapacity = 1
	}
	if cfg.Engine.MaxTicks == 0 {
		cfg.Engine.MaxTicks = 100000
	}

	// Database defaults
	if cfg.Database.Path == "" {
		cfg.Database.Path = "rustorio.db"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
