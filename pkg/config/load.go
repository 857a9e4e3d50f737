package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file at the specified path. File
// values are overlaid on the defaults, so a partial file is fine. A
// missing file yields the full default configuration; a present but
// malformed file is an error. Environment variables of the form
// GANYMEDE_SECTION_FIELD override both.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Run on defaults.
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format GANYMEDE_SECTION_FIELD and
// always win over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("GANYMEDE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("GANYMEDE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("GANYMEDE_GUARDRAILS_RULESET_PATH"); val != "" {
		cfg.Guardrails.RulesetPath = val
	}
	if val := os.Getenv("GANYMEDE_GUARDRAILS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Guardrails.Watch = b
		}
	}
	if val := os.Getenv("GANYMEDE_GUARDRAILS_CHECK_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Guardrails.CheckTimeout = d
		}
	}

	if val := os.Getenv("GANYMEDE_REDACTION_PATTERNS_PATH"); val != "" {
		cfg.Redaction.PatternsPath = val
	}

	if val := os.Getenv("GANYMEDE_JUDGE_ENDPOINT"); val != "" {
		cfg.Judge.Endpoint = val
	}
	if val := os.Getenv("GANYMEDE_JUDGE_API_KEY"); val != "" {
		cfg.Judge.APIKey = val
	}

	if val := os.Getenv("GANYMEDE_EVIDENCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_EVIDENCE_BACKEND"); val != "" {
		cfg.Evidence.Backend = val
	}
	if val := os.Getenv("GANYMEDE_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}

	if val := os.Getenv("GANYMEDE_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
