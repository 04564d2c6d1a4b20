// Package control parses inbound control messages and applies them to a
// node's live generator parameters.
package control

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rickgao/sigrelay/internal/generator"
)

// Control message field names.
const (
	FieldMin       = "Value_min"
	FieldMax       = "Value_max"
	FieldFrequency = "Frequency"
)

// Errors
var (
	ErrMalformedControl = errors.New("malformed control message")
	ErrIncompleteRange  = errors.New("Value_min and Value_max must be sent together")
)

// Channel applies a raw control payload to a node's parameters.
type Channel interface {
	Apply(payload []byte) (Change, error)
}

// Change describes which parameters a message updated.
type Change struct {
	Frequency *float64
	Min       *float64
	Max       *float64
}

// Empty reports whether the message changed nothing.
func (c Change) Empty() bool {
	return c.Frequency == nil && c.Min == nil && c.Max == nil
}

// RampChannel accepts {"Value_min": n, "Value_max": n}. Both fields are required.
type RampChannel struct {
	params *generator.RampParams
}

// NewRampChannel creates a control channel for a ramp node.
func NewRampChannel(params *generator.RampParams) *RampChannel {
	return &RampChannel{params: params}
}

// Apply updates min and max when both are present. A message carrying only
// one of them leaves the parameters unchanged.
func (c *RampChannel) Apply(payload []byte) (Change, error) {
	fields, err := decode(payload)
	if err != nil {
		return Change{}, err
	}

	_, hasMin := fields[FieldMin]
	_, hasMax := fields[FieldMax]
	if !hasMin || !hasMax {
		return Change{}, ErrIncompleteRange
	}

	min, err := number(fields, FieldMin)
	if err != nil {
		return Change{}, err
	}
	max, err := number(fields, FieldMax)
	if err != nil {
		return Change{}, err
	}

	// Integer parameters; fractional input truncates toward zero.
	lo, hi := int(min), int(max)
	c.params.SetRange(lo, hi)

	flo, fhi := float64(lo), float64(hi)
	return Change{Min: &flo, Max: &fhi}, nil
}

// SineChannel accepts {"Frequency": f} and/or {"Value_min": n, "Value_max": n}.
type SineChannel struct {
	params *generator.SineParams
}

// NewSineChannel creates a control channel for a sine node.
func NewSineChannel(params *generator.SineParams) *SineChannel {
	return &SineChannel{params: params}
}

// Apply updates frequency on its own and min/max as a pair. Fields are
// applied in that order: a valid frequency is kept even if the range that
// follows it is malformed.
func (c *SineChannel) Apply(payload []byte) (Change, error) {
	fields, err := decode(payload)
	if err != nil {
		return Change{}, err
	}

	var change Change

	if _, ok := fields[FieldFrequency]; ok {
		f, err := number(fields, FieldFrequency)
		if err != nil {
			return change, err
		}
		c.params.SetFrequency(f)
		change.Frequency = &f
	}

	_, hasMin := fields[FieldMin]
	_, hasMax := fields[FieldMax]
	if hasMin && hasMax {
		min, err := number(fields, FieldMin)
		if err != nil {
			return change, err
		}
		max, err := number(fields, FieldMax)
		if err != nil {
			return change, err
		}
		c.params.SetRange(min, max)
		change.Min, change.Max = &min, &max
	}

	return change, nil
}

func decode(payload []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedControl, err)
	}
	return fields, nil
}

func number(fields map[string]json.RawMessage, name string) (float64, error) {
	raw := fields[name]
	if string(raw) == "null" {
		return 0, fmt.Errorf("%w: %s is null", ErrMalformedControl, name)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedControl, name, err)
	}
	return v, nil
}
