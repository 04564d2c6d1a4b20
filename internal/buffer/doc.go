// Package buffer implements the relay's ring buffer.
//
// The buffer bridges many producers (one per upstream link) and a single
// periodic consumer. It never blocks and never rejects a push: once full,
// each push overwrites the oldest unread slot. That loss is the only
// backpressure the relay has.
package buffer
