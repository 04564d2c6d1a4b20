package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/sigrelay/internal/model"
)

func TestRing_DrainInPushOrder(t *testing.T) {
	r := NewRing(10)

	for i := 0; i < 5; i++ {
		r.Push(fmt.Sprintf("v%d", i), fmt.Sprintf("t%d", i))
	}
	require.Equal(t, 5, r.Len())

	got := r.Drain()

	want := []model.Record{
		{Value: "v0", Timestamp: "t0"},
		{Value: "v1", Timestamp: "t1"},
		{Value: "v2", Timestamp: "t2"},
		{Value: "v3", Timestamp: "t3"},
		{Value: "v4", Timestamp: "t4"},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 0, r.Len())
}

func TestRing_DrainEmpty(t *testing.T) {
	r := NewRing(10)
	assert.Empty(t, r.Drain())

	r.Push("a", "1")
	r.Drain()
	assert.Empty(t, r.Drain(), "second drain should find nothing pending")
}

func TestRing_ExactlyCapacity(t *testing.T) {
	r := NewRing(DefaultCapacity)

	for i := 0; i < DefaultCapacity; i++ {
		r.Push(fmt.Sprint(i), "")
	}

	got := r.Drain()
	require.Len(t, got, DefaultCapacity)
	assert.Equal(t, "0", got[0].Value)
	assert.Equal(t, fmt.Sprint(DefaultCapacity-1), got[DefaultCapacity-1].Value)
	assert.Zero(t, r.Stats().TotalOverwritten)
}

func TestRing_OverflowKeepsMostRecent(t *testing.T) {
	r := NewRing(4)

	for i := 0; i < 11; i++ {
		r.Push(fmt.Sprint(i), fmt.Sprint(i))
	}

	got := r.Drain()
	require.Len(t, got, 4)
	for i, rec := range got {
		assert.Equal(t, fmt.Sprint(7+i), rec.Value)
	}

	stats := r.Stats()
	assert.Equal(t, int64(11), stats.TotalPushed)
	assert.Equal(t, int64(7), stats.TotalOverwritten)
	assert.Equal(t, int64(4), stats.TotalDrained)
}

func TestRing_WrapAcrossDrains(t *testing.T) {
	r := NewRing(3)

	r.Push("a", "")
	r.Push("b", "")
	assert.Equal(t, []string{"a", "b"}, values(r.Drain()))

	// Write cursor wraps past the end of the backing arrays.
	r.Push("c", "")
	r.Push("d", "")
	r.Push("e", "")
	assert.Equal(t, []string{"c", "d", "e"}, values(r.Drain()))

	r.Push("f", "")
	assert.Equal(t, []string{"f"}, values(r.Drain()))
}

func TestRing_DrainClearsSlots(t *testing.T) {
	r := NewRing(2)
	r.Push("a", "1")
	r.Push("b", "2")
	r.Drain()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.values {
		assert.Empty(t, r.values[i])
		assert.Empty(t, r.timestamps[i])
	}
	assert.Equal(t, r.write, r.read)
}

func TestRing_OverwriteHook(t *testing.T) {
	var calls atomic.Int32
	r := NewRing(2, WithOverwriteHook(func() { calls.Add(1) }))

	r.Push("a", "")
	r.Push("b", "")
	assert.Equal(t, int32(0), calls.Load())

	r.Push("c", "")
	r.Push("d", "")
	assert.Equal(t, int32(2), calls.Load())
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, 1, r.Cap())

	r.Push("a", "")
	r.Push("b", "")
	assert.Equal(t, []string{"b"}, values(r.Drain()))
}

func TestRing_ConcurrentProducers(t *testing.T) {
	const producers = 4
	const perProducer = 200

	r := NewRing(producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.Push(fmt.Sprintf("%d-%d", p, i), "")
			}
		}(p)
	}

	// Single consumer draining while producers run.
	var drained []model.Record
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

loop:
	for {
		select {
		case <-done:
			break loop
		default:
			drained = append(drained, r.Drain()...)
		}
	}
	drained = append(drained, r.Drain()...)

	require.Len(t, drained, producers*perProducer)

	// Per-producer order is preserved.
	next := make(map[int]int)
	for _, rec := range drained {
		var p, i int
		_, err := fmt.Sscanf(rec.Value, "%d-%d", &p, &i)
		require.NoError(t, err)
		assert.Equal(t, next[p], i, "producer %d out of order", p)
		next[p] = i + 1
	}
}

func values(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Value
	}
	return out
}
