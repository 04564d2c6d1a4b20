package buffer

import (
	"sync"

	"github.com/rickgao/sigrelay/internal/model"
)

// DefaultCapacity is the number of slots in a relay ring.
const DefaultCapacity = 1000

// Ring is a fixed-capacity circular store of (value, timestamp) slots.
// All state is guarded by a single mutex.
type Ring struct {
	mu         sync.Mutex
	values     []string
	timestamps []string
	capacity   int
	write      int // next slot to write
	read       int // next slot to drain
	count      int // unread slots

	// Stats
	totalPushed      int64
	totalDrained     int64
	totalOverwritten int64

	onOverwrite func()
}

// Option configures a Ring.
type Option func(*Ring)

// WithOverwriteHook registers fn to run each time an unread slot is
// overwritten. fn runs with the ring lock held and must not call back into
// the ring.
func WithOverwriteHook(fn func()) Option {
	return func(r *Ring) {
		r.onOverwrite = fn
	}
}

// NewRing allocates a ring with the given capacity.
func NewRing(capacity int, opts ...Option) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	r := &Ring{
		values:     make([]string, capacity),
		timestamps: make([]string, capacity),
		capacity:   capacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push stores a slot at the write cursor. When the ring is full the oldest
// unread slot is overwritten and the read cursor moves past it.
func (r *Ring) Push(value, timestamp string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[r.write] = value
	r.timestamps[r.write] = timestamp
	r.write = (r.write + 1) % r.capacity
	r.totalPushed++

	if r.count == r.capacity {
		r.read = r.write
		r.totalOverwritten++
		if r.onOverwrite != nil {
			r.onOverwrite()
		}
		return
	}
	r.count++
}

// Drain returns every unread slot in push order, clears each drained slot,
// and moves the read cursor up to the write cursor. Returns nil when nothing
// is pending.
func (r *Ring) Drain() []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}

	out := make([]model.Record, 0, r.count)
	for r.count > 0 {
		out = append(out, model.Record{
			Value:     r.values[r.read],
			Timestamp: r.timestamps[r.read],
		})
		r.values[r.read] = ""
		r.timestamps[r.read] = ""
		r.read = (r.read + 1) % r.capacity
		r.count--
	}
	r.totalDrained += int64(len(out))

	return out
}

// Len returns the number of unread slots.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return r.capacity
}

// Stats returns ring statistics.
func (r *Ring) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Pending:          r.count,
		Capacity:         r.capacity,
		TotalPushed:      r.totalPushed,
		TotalDrained:     r.totalDrained,
		TotalOverwritten: r.totalOverwritten,
	}
}

// Stats contains ring statistics.
type Stats struct {
	Pending          int
	Capacity         int
	TotalPushed      int64
	TotalDrained     int64
	TotalOverwritten int64
}
