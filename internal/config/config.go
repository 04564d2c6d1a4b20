package config

import "time"

// Config is the root configuration for a sigrelay process.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Ramp    RampConfig    `yaml:"ramp"`
	Sine    SineConfig    `yaml:"sine"`
	Relay   RelayConfig   `yaml:"relay"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ListenConfig is a node's WebSocket listen address and path.
type ListenConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// RampConfig holds ramp node configuration.
type RampConfig struct {
	Listen   ListenConfig  `yaml:"listen"`
	ID       int           `yaml:"id"`
	Interval time.Duration `yaml:"interval"`
	Min      int           `yaml:"min"`
	Max      int           `yaml:"max"`
}

// SineConfig holds sine node configuration.
type SineConfig struct {
	Listen    ListenConfig  `yaml:"listen"`
	ID        int           `yaml:"id"`
	Interval  time.Duration `yaml:"interval"`
	Frequency float64       `yaml:"frequency"`
	Min       float64       `yaml:"min"`
	Max       float64       `yaml:"max"`
	PhaseStep float64       `yaml:"phase_step"`
}

// RelayConfig holds relay node configuration.
type RelayConfig struct {
	Listen        ListenConfig  `yaml:"listen"`
	Upstreams     []string      `yaml:"upstreams"`
	DrainInterval time.Duration `yaml:"drain_interval"`
	Capacity      int           `yaml:"capacity"`
	LinkBuffer    int           `yaml:"link_buffer"`
}

// MetricsConfig holds the Prometheus listener configuration.
type MetricsConfig struct {
	Port int    `yaml:"port"` // 0 disables the listener
	Path string `yaml:"path"`
}
