package node

import (
	"time"

	"github.com/rickgao/sigrelay/internal/generator"
	"github.com/rickgao/sigrelay/internal/model"
)

// RampConfig configures a ramp node.
type RampConfig struct {
	ID       int
	Min      int
	Max      int
	Interval time.Duration
}

// DefaultRampConfig returns the ramp node defaults.
func DefaultRampConfig() RampConfig {
	return RampConfig{
		ID:       model.RampNodeID,
		Min:      0,
		Max:      20,
		Interval: 3 * time.Millisecond,
	}
}

// SineConfig configures a sine node.
type SineConfig struct {
	ID        int
	Frequency float64
	Min       float64
	Max       float64
	PhaseStep float64
	Interval  time.Duration
}

// DefaultSineConfig returns the sine node defaults.
func DefaultSineConfig() SineConfig {
	return SineConfig{
		ID:        model.SineNodeID,
		Frequency: 1.0,
		Min:       0,
		Max:       20,
		PhaseStep: generator.DefaultPhaseStep,
		Interval:  7 * time.Millisecond,
	}
}
