// Package model defines the sample types shared by the broadcast nodes and the relay.
//
// Conventions:
//   - Timestamps: local wall-clock time, ISO-8601 with millisecond precision and no zone ("2006-01-02T15:04:05.000")
//   - Node IDs: 1 = ramp node, 2 = sine node
//   - Payloads are JSON text frames; the relay forwards them byte for byte
package model
