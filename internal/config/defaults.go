package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultPath          = "/ws"
	DefaultRampAddr      = ":8765"
	DefaultRampID        = 1
	DefaultRampInterval  = 3 * time.Millisecond
	DefaultRampMin       = 0
	DefaultRampMax       = 20
	DefaultSineAddr      = ":8766"
	DefaultSineID        = 2
	DefaultSineInterval  = 7 * time.Millisecond
	DefaultSineFrequency = 1.0
	DefaultSineMin       = 0.0
	DefaultSineMax       = 20.0
	DefaultPhaseStep     = 0.01
	DefaultRelayAddr     = ":8080"
	DefaultDrainInterval = 10 * time.Millisecond
	DefaultCapacity      = 1000
	DefaultLinkBuffer    = 1024
	DefaultMetricsPath   = "/metrics"
)

// DefaultUpstreams are the ramp and sine endpoints on the local host.
var DefaultUpstreams = []string{
	"ws://localhost:8765/ws",
	"ws://localhost:8766/ws",
}

// Default returns a fully defaulted configuration. Generator ranges and
// frequency are seeded here rather than in applyDefaults, so an explicit zero
// in a file is kept.
func Default() *Config {
	cfg := &Config{
		Ramp: RampConfig{
			ID:  DefaultRampID,
			Min: DefaultRampMin,
			Max: DefaultRampMax,
		},
		Sine: SineConfig{
			ID:        DefaultSineID,
			Frequency: DefaultSineFrequency,
			Min:       DefaultSineMin,
			Max:       DefaultSineMax,
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Ramp defaults
	applyListenDefaults(&c.Ramp.Listen, DefaultRampAddr)
	if c.Ramp.Interval == 0 {
		c.Ramp.Interval = DefaultRampInterval
	}

	// Sine defaults
	applyListenDefaults(&c.Sine.Listen, DefaultSineAddr)
	if c.Sine.Interval == 0 {
		c.Sine.Interval = DefaultSineInterval
	}
	if c.Sine.PhaseStep == 0 {
		c.Sine.PhaseStep = DefaultPhaseStep
	}

	// Relay defaults
	applyListenDefaults(&c.Relay.Listen, DefaultRelayAddr)
	if len(c.Relay.Upstreams) == 0 {
		c.Relay.Upstreams = append([]string(nil), DefaultUpstreams...)
	}
	if c.Relay.DrainInterval == 0 {
		c.Relay.DrainInterval = DefaultDrainInterval
	}
	if c.Relay.Capacity == 0 {
		c.Relay.Capacity = DefaultCapacity
	}
	if c.Relay.LinkBuffer == 0 {
		c.Relay.LinkBuffer = DefaultLinkBuffer
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyListenDefaults(l *ListenConfig, addr string) {
	if l.Addr == "" {
		l.Addr = addr
	}
	if l.Path == "" {
		l.Path = DefaultPath
	}
}
