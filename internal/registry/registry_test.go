package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender stores every payload it is sent.
type recordingSender struct {
	mu       sync.Mutex
	payloads []string
	err      error
	order    *[]string
	name     string
}

func (s *recordingSender) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, string(payload))
	return nil
}

func (s *recordingSender) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.payloads...)
}

func TestRegistry_BroadcastEmpty(t *testing.T) {
	r := New()

	sent, err := r.Broadcast([]byte("x"))

	assert.NoError(t, err)
	assert.Zero(t, sent)
}

func TestRegistry_AddRemoveRemove(t *testing.T) {
	r := New()
	h := NewHandle()

	r.Add(h, &recordingSender{})
	require.Equal(t, 1, r.Len())

	assert.True(t, r.Remove(h))
	assert.False(t, r.Remove(h), "second removal is a no-op")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveAbsent(t *testing.T) {
	r := New()
	r.Add(NewHandle(), &recordingSender{})

	assert.False(t, r.Remove(NewHandle()))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_BroadcastInsertionOrder(t *testing.T) {
	r := New()
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		r.Add(NewHandle(), &recordingSender{name: name, order: &order})
	}

	sent, err := r.Broadcast([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRegistry_RemovePreservesOrder(t *testing.T) {
	r := New()
	var order []string

	ha, hb, hc := NewHandle(), NewHandle(), NewHandle()
	r.Add(ha, &recordingSender{name: "a", order: &order})
	r.Add(hb, &recordingSender{name: "b", order: &order})
	r.Add(hc, &recordingSender{name: "c", order: &order})

	r.Remove(hb)
	_, err := r.Broadcast([]byte("x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, order)
}

func TestRegistry_BroadcastFailureAttemptsAll(t *testing.T) {
	r := New()
	boom := errors.New("broken pipe")

	good1 := &recordingSender{}
	bad := &recordingSender{err: boom}
	good2 := &recordingSender{}
	badHandle := NewHandle()

	r.Add(NewHandle(), good1)
	r.Add(badHandle, bad)
	r.Add(NewHandle(), good2)

	sent, err := r.Broadcast([]byte("frame"))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"frame"}, good1.received())
	assert.Equal(t, []string{"frame"}, good2.received())

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, badHandle, sendErr.Handle)
}

func TestRegistry_ConcurrentMutation(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := NewHandle()
			r.Add(h, &recordingSender{})
			_, _ = r.Broadcast([]byte("x"))
			r.Remove(h)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}

func TestHandle_String(t *testing.T) {
	h := NewHandle()
	assert.Len(t, h.String(), 36)
	assert.NotEqual(t, h, NewHandle())
}

func TestFailures(t *testing.T) {
	assert.Equal(t, 0, Failures(nil))
	assert.Equal(t, 1, Failures(errors.New("single")))
	assert.Equal(t, 2, Failures(errors.Join(errors.New("a"), errors.New("b"))))
}
