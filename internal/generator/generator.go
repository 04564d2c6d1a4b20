package generator

import (
	"math"
	"time"

	"github.com/rickgao/sigrelay/internal/model"
)

// Generator produces one sample per tick.
// Next is only called from the owning node's tick loop.
type Generator interface {
	// Next computes the next value and stamps it with at.
	Next(at time.Time) model.Sample

	// NodeID returns the id carried by every sample.
	NodeID() int
}

// DefaultPhaseStep is the sine phase advance per tick.
const DefaultPhaseStep = 0.01

// Ramp counts from min to max one step per tick and then hard-resets to min.
type Ramp struct {
	id     int
	params *RampParams
	value  int
}

// NewRamp creates a ramp generator starting at the current min.
func NewRamp(id int, params *RampParams) *Ramp {
	return &Ramp{
		id:     id,
		params: params,
		value:  params.Min(),
	}
}

// NodeID returns the sample id.
func (r *Ramp) NodeID() int { return r.id }

// Next emits the current state and advances it.
// A state above a lowered max resets to min before it is emitted.
func (r *Ramp) Next(at time.Time) model.Sample {
	min, max := r.params.Min(), r.params.Max()

	if r.value > max {
		r.value = min
	}
	out := r.value

	if r.value >= max {
		r.value = min
	} else {
		r.value++
	}

	return model.NewSample(r.id, at, float64(out))
}

// Sine evaluates amplitude*sin(frequency*phase)+offset with a phase counter
// that advances by a fixed step per tick and never resets.
type Sine struct {
	id     int
	params *SineParams
	step   float64
	phase  float64
}

// NewSine creates a sine generator at phase 0.
func NewSine(id int, params *SineParams, step float64) *Sine {
	if step <= 0 {
		step = DefaultPhaseStep
	}
	return &Sine{
		id:     id,
		params: params,
		step:   step,
	}
}

// NodeID returns the sample id.
func (s *Sine) NodeID() int { return s.id }

// Phase returns the phase the next sample will be evaluated at.
func (s *Sine) Phase() float64 { return s.phase }

// Next evaluates the wave at the current phase, then advances the phase.
func (s *Sine) Next(at time.Time) model.Sample {
	v := SineValue(s.params.Frequency(), s.params.Min(), s.params.Max(), s.phase)
	s.phase += s.step
	return model.NewSample(s.id, at, v)
}

// SineValue computes the wave value for the given parameters at phase.
func SineValue(frequency, min, max, phase float64) float64 {
	amplitude := (max - min) / 2
	offset := (max + min) / 2
	return amplitude*math.Sin(frequency*phase) + offset
}
