package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds plugin-level options. Per-button settings live in Settings
// and come from the host; this file-level configuration only covers concerns
// the host has no UI for (logging, metrics, transport tuning).
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	// Addr is the listen address for the Prometheus endpoint.
	// Empty disables the listener.
	Addr string `mapstructure:"addr"`
}

type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Load reads plugin configuration from file and environment variables.
// A missing file is not an error: defaults apply and the plugin runs with
// whatever the host hands it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GLUCODECK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("http.timeout_seconds", 30)
}
