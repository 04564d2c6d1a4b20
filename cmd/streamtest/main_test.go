package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/sigrelay/internal/connection"
	"github.com/rickgao/sigrelay/internal/logging"
	"github.com/rickgao/sigrelay/internal/model"
)

func TestTracker_KeepsLatestPerID(t *testing.T) {
	tr := newTracker()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	tr.Observe(model.Sample{ID: 1, Timestamp: "a", Value: 1}, at)
	tr.Observe(model.Sample{ID: 2, Timestamp: "b", Value: 10.5}, at)
	tr.Observe(model.Sample{ID: 1, Timestamp: "c", Value: 2}, at)

	s, ok := tr.Latest(1)
	require.True(t, ok)
	assert.Equal(t, 2.0, s.Value)
	assert.Equal(t, int64(3), tr.Total())

	_, ok = tr.Latest(3)
	assert.False(t, ok)

	assert.Equal(t,
		"id=1 latest=2.0000 at=c received=2024-01-02T03:04:05.000 count=2\n"+
			"id=2 latest=10.5000 at=b received=2024-01-02T03:04:05.000 count=1\n",
		tr.Summary())
}

func TestHandleFrame_SkipsUnparseable(t *testing.T) {
	tr := newTracker()
	logger := logging.New(io.Discard, "error", "text")

	handleFrame(tr, connection.TimestampedMessage{Data: []byte("not json"), ReceivedAt: time.Now()}, false, logger)
	handleFrame(tr, connection.TimestampedMessage{
		Data:       []byte(`{"id":2,"timestamp":"2024-01-01T00:00:00.000","value":10}`),
		ReceivedAt: time.Now(),
	}, false, logger)

	assert.Equal(t, int64(1), tr.Total())
	s, ok := tr.Latest(2)
	require.True(t, ok)
	assert.Equal(t, 10.0, s.Value)
}
