package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// EngineConfig contains tuning knobs for the task intelligence engine.
type EngineConfig struct {
	// SuggestionWorkers bounds the number of tasks scored concurrently
	// during suggestion generation.
	SuggestionWorkers int `mapstructure:"suggestion_workers" validate:"gte=0,lte=64"`

	// MaxRecurrenceInstances caps how many instances a single generation
	// request may materialize.
	MaxRecurrenceInstances int `mapstructure:"max_recurrence_instances" validate:"gte=0,lte=366"`
}
