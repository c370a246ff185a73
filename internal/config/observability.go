package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type NewRelicConfig struct {
	LicenseKey              string `koanf:"license_key"`
	AppLogForwardingEnabled bool   `koanf:"app_log_forwarding_enabled"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate fills the logging defaults and checks the level and format.
func (o *ObservabilityConfig) Validate() error {
	if o.Logging.Level == "" {
		o.Logging.Level = "info"
	}
	if _, err := zerolog.ParseLevel(o.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.Logging.Level, err)
	}
	switch o.Logging.Format {
	case "":
		o.Logging.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: must be json or console", o.Logging.Format)
	}
	return nil
}

// NewRelicEnabled reports whether a license key was configured.
func (o *ObservabilityConfig) NewRelicEnabled() bool {
	return o.NewRelic.LicenseKey != ""
}

// LogLevel returns the configured zerolog level.
func (o *ObservabilityConfig) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(o.Logging.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
