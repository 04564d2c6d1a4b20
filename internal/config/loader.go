package config

import (
	"fmt"
	"os"

	"go-simpler.org/env"
	"gopkg.in/yaml.v3"
)

// envOverrides are the environment variables that take precedence over the
// YAML file. A negative metrics port means unset.
type envOverrides struct {
	LogLevel       string   `env:"SIGRELAY_LOG_LEVEL"`
	LogFormat      string   `env:"SIGRELAY_LOG_FORMAT"`
	RampListen     string   `env:"SIGRELAY_RAMP_LISTEN"`
	SineListen     string   `env:"SIGRELAY_SINE_LISTEN"`
	RelayListen    string   `env:"SIGRELAY_RELAY_LISTEN"`
	RelayUpstreams []string `env:"SIGRELAY_RELAY_UPSTREAMS"`
	MetricsPort    int      `env:"SIGRELAY_METRICS_PORT" default:"-1"`
}

// Load reads a YAML file, expanding ${VAR} references, over the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads path (or only defaults when path is empty), then
// applies environment overrides and fills any remaining zero values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads the configuration and validates it.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Load(&o, nil); err != nil {
		return fmt.Errorf("load environment overrides: %w", err)
	}

	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.RampListen != "" {
		c.Ramp.Listen.Addr = o.RampListen
	}
	if o.SineListen != "" {
		c.Sine.Listen.Addr = o.SineListen
	}
	if o.RelayListen != "" {
		c.Relay.Listen.Addr = o.RelayListen
	}
	if len(o.RelayUpstreams) > 0 {
		c.Relay.Upstreams = o.RelayUpstreams
	}
	if o.MetricsPort >= 0 {
		c.Metrics.Port = o.MetricsPort
	}
	return nil
}
