package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
// Generator ranges are not checked: min >= max is accepted and produces a
// degenerate signal.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}

	if err := c.Ramp.Listen.validate("ramp.listen"); err != nil {
		return err
	}
	if c.Ramp.Interval <= 0 {
		return errors.New("ramp.interval must be > 0")
	}

	if err := c.Sine.Listen.validate("sine.listen"); err != nil {
		return err
	}
	if c.Sine.Interval <= 0 {
		return errors.New("sine.interval must be > 0")
	}
	if c.Sine.PhaseStep <= 0 {
		return errors.New("sine.phase_step must be > 0")
	}

	if err := c.Relay.Listen.validate("relay.listen"); err != nil {
		return err
	}
	if len(c.Relay.Upstreams) == 0 {
		return errors.New("relay.upstreams must not be empty")
	}
	for i, u := range c.Relay.Upstreams {
		if err := validateUpstream(u); err != nil {
			return fmt.Errorf("relay.upstreams[%d]: %w", i, err)
		}
	}
	if c.Relay.DrainInterval <= 0 {
		return errors.New("relay.drain_interval must be > 0")
	}
	if c.Relay.Capacity < 1 {
		return errors.New("relay.capacity must be >= 1")
	}
	if c.Relay.LinkBuffer < 0 {
		return errors.New("relay.link_buffer must be >= 0")
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return errors.New("metrics.port must be between 0 and 65535")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}

	return nil
}

func (l *ListenConfig) validate(prefix string) error {
	if l.Addr == "" {
		return fmt.Errorf("%s.addr is required", prefix)
	}
	if !strings.HasPrefix(l.Path, "/") {
		return fmt.Errorf("%s.path must start with /", prefix)
	}
	return nil
}

func validateUpstream(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme %q must be ws or wss", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}
