// Package generator implements the synthetic signal sources.
//
// Each generator produces one sample per tick from live parameters that the
// control channel may change at any time. Parameters are stored field by
// field in atomics: a tick always reads a consistent value for each field,
// but a min/max pair written by a control message is not applied atomically.
package generator
