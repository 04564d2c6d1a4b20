// Package registry tracks the outbound subscriber connections of one node.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque, stable subscriber identity.
type Handle uuid.UUID

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.New())
}

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// Sender delivers one text payload to a subscriber.
type Sender interface {
	Send(payload []byte) error
}

type subscriber struct {
	handle Handle
	sender Sender
}

// Registry is an insertion-ordered set of subscribers guarded by one mutex.
type Registry struct {
	mu   sync.Mutex
	subs []subscriber
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add appends a subscriber. Handles are expected to be unique; this is not
// re-checked.
func (r *Registry) Add(h Handle, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, subscriber{handle: h, sender: s})
}

// Remove erases the subscriber with handle h. Returns false when h is not
// registered; removing twice is a no-op.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.handle == h {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Broadcast sends payload to every subscriber in insertion order while
// holding the registry lock. A failing subscriber does not stop delivery to
// the rest; all failures are joined into the returned error, and the caller
// decides what a failure means for its loop.
func (r *Registry) Broadcast(payload []byte) (sent int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, sub := range r.subs {
		if err := sub.sender.Send(payload); err != nil {
			errs = append(errs, &SendError{Handle: sub.handle, Err: err})
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// SendError reports a failed delivery to one subscriber.
type SendError struct {
	Handle Handle
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to subscriber %s: %v", e.Handle, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Failures returns the number of subscriber failures joined in err.
func Failures(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
