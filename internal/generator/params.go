package generator

import (
	"math"
	"sync/atomic"
)

// atomicFloat64 is a float64 stored as its IEEE-754 bits.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// RampParams holds the live range of a ramp generator.
type RampParams struct {
	min atomic.Int64
	max atomic.Int64
}

// NewRampParams creates ramp parameters.
func NewRampParams(min, max int) *RampParams {
	p := &RampParams{}
	p.min.Store(int64(min))
	p.max.Store(int64(max))
	return p
}

// Min returns the current lower bound.
func (p *RampParams) Min() int { return int(p.min.Load()) }

// Max returns the current upper bound.
func (p *RampParams) Max() int { return int(p.max.Load()) }

// SetRange stores both bounds. No ordering check is made.
func (p *RampParams) SetRange(min, max int) {
	p.min.Store(int64(min))
	p.max.Store(int64(max))
}

// RampSnapshot is a point-in-time copy of RampParams.
type RampSnapshot struct {
	Min int
	Max int
}

// Snapshot copies the current values.
func (p *RampParams) Snapshot() RampSnapshot {
	return RampSnapshot{Min: p.Min(), Max: p.Max()}
}

// SineParams holds the live frequency and range of a sine generator.
type SineParams struct {
	frequency atomicFloat64
	min       atomicFloat64
	max       atomicFloat64
}

// NewSineParams creates sine parameters.
func NewSineParams(frequency, min, max float64) *SineParams {
	p := &SineParams{}
	p.frequency.Store(frequency)
	p.min.Store(min)
	p.max.Store(max)
	return p
}

// Frequency returns the current angular frequency multiplier.
func (p *SineParams) Frequency() float64 { return p.frequency.Load() }

// Min returns the current lower bound.
func (p *SineParams) Min() float64 { return p.min.Load() }

// Max returns the current upper bound.
func (p *SineParams) Max() float64 { return p.max.Load() }

// SetFrequency stores a new frequency.
func (p *SineParams) SetFrequency(f float64) { p.frequency.Store(f) }

// SetRange stores both bounds. No ordering check is made.
func (p *SineParams) SetRange(min, max float64) {
	p.min.Store(min)
	p.max.Store(max)
}

// SineSnapshot is a point-in-time copy of SineParams.
type SineSnapshot struct {
	Frequency float64
	Min       float64
	Max       float64
}

// Snapshot copies the current values.
func (p *SineParams) Snapshot() SineSnapshot {
	return SineSnapshot{Frequency: p.Frequency(), Min: p.Min(), Max: p.Max()}
}
