package config

// EngineConfig holds production engine configuration
type EngineConfig struct {
	// Ticks per second when running in real time (0 means run as fast as
	// possible)
	TickRate float64 `mapstructure:"tick_rate" validate:"min=0"`

	// Batches a machine accepts for one recipe before counting as busy
	DefaultBatchCapacity int `mapstructure:"default_batch_capacity" validate:"min=1"`

	// Safety limit on how many ticks a run may take before giving up
	MaxTicks uint64 `mapstructure:"max_ticks" validate:"min=1"`

	// Path of the PID file guarding paced real-time runs. Empty disables
	// the guard.
	PIDFile string `mapstructure:"pid_file"`
}
