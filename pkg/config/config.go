package config

import "time"

// Config is the root configuration for the Ganymede service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Guardrails GuardrailsConfig `yaml:"guardrails"`
	Redaction  RedactionConfig  `yaml:"redaction"`
	Judge      JudgeConfig      `yaml:"judge"`
	Evidence   EvidenceConfig   `yaml:"evidence"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS configures cross-origin access.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// GuardrailsConfig configures the policy execution engine.
type GuardrailsConfig struct {
	// RulesetPath is the YAML DSL file holding check definitions. Empty
	// means the built-in default ruleset.
	RulesetPath string `yaml:"ruleset_path"`

	// Watch enables fsnotify hot-reload of the ruleset file.
	Watch bool `yaml:"watch"`

	// CheckTimeout bounds one check implementation call.
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// MaxChecks caps how many checks a ruleset may declare.
	MaxChecks int `yaml:"max_checks"`
}

// RedactionConfig configures the masking collaborator.
type RedactionConfig struct {
	// PatternsPath is a YAML pattern table. Empty means the built-in
	// default patterns.
	PatternsPath string `yaml:"patterns_path"`
}

// JudgeConfig configures the llm_judge check.
type JudgeConfig struct {
	// Endpoint is the judge service URL. Empty disables remote judging
	// in favor of the local heuristic.
	Endpoint string `yaml:"endpoint"`

	// APIKey authenticates against the judge service.
	APIKey string `yaml:"api_key"`

	// Timeout bounds one judge call.
	Timeout time.Duration `yaml:"timeout"`
}

// EvidenceConfig configures verdict audit recording.
type EvidenceConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Backend   string          `yaml:"backend"` // "memory" or "sqlite"
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the SQLite evidence backend.
type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	WALMode      bool          `yaml:"wal_mode"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig configures the async evidence recorder.
type RecorderConfig struct {
	// AsyncBuffer is the buffered channel size; 0 means synchronous
	// writes.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds one storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig configures scheduled evidence pruning.
type RetentionConfig struct {
	// Days keeps records younger than this many days; 0 disables
	// age-based pruning.
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression; empty disables the scheduler.
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the store size; 0 disables count-based pruning.
	MaxRecords int `yaml:"max_records"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactPII masks sensitive values in log attributes.
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   "0.0.0.0:3006",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxHeaderBytes:  1 << 20,
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
			},
		},
		Guardrails: GuardrailsConfig{
			RulesetPath:  "",
			Watch:        true,
			CheckTimeout: 10 * time.Second,
			MaxChecks:    100,
		},
		Judge: JudgeConfig{
			Timeout: 30 * time.Second,
		},
		Evidence: EvidenceConfig{
			Enabled: false,
			Backend: "memory",
			SQLite: SQLiteConfig{
				Path:         "data/evidence.db",
				MaxOpenConns: 10,
				MaxIdleConns: 5,
				WALMode:      true,
				BusyTimeout:  5 * time.Second,
			},
			Recorder: RecorderConfig{
				AsyncBuffer:  1000,
				WriteTimeout: 5 * time.Second,
			},
			Retention: RetentionConfig{
				Days:          30,
				PruneSchedule: "",
				MaxRecords:    0,
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:     "info",
				Format:    "json",
				AddSource: false,
				RedactPII: true,
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "ganymede",
				Subsystem: "",
			},
		},
	}
}
