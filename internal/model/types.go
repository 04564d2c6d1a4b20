package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the wire format for sample and receipt timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000"

// Well-known node identifiers.
const (
	RampNodeID = 1
	SineNodeID = 2
)

// Sample is one generated data point. Immutable once produced.
type Sample struct {
	ID        int     `json:"id"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// NewSample stamps value with the node id and the given wall-clock time.
func NewSample(id int, at time.Time, value float64) Sample {
	return Sample{
		ID:        id,
		Timestamp: FormatTimestamp(at),
		Value:     value,
	}
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string in local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// Encode serializes the sample as a JSON text frame.
// Integral values (ramp node) encode without a fractional part.
func (s Sample) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSample parses a sample payload.
func DecodeSample(data []byte) (Sample, error) {
	var s Sample
	err := json.Unmarshal(data, &s)
	return s, err
}

// Record is one drained ring-buffer entry: the raw upstream payload and the
// relay's own receipt timestamp.
type Record struct {
	Value     string
	Timestamp string
}
