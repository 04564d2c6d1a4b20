package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNodeMetrics(reg, "ramp")

	m.SampleGenerated()
	m.SampleGenerated()
	m.Broadcast(3, 1)
	m.SetSubscribers(4)
	m.ControlMessage(ControlApplied)
	m.ControlMessage(ControlRejected)
	m.ControlMessage(ControlRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SamplesGenerated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FramesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Subscribers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ControlMessages.WithLabelValues(ControlApplied)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ControlMessages.WithLabelValues(ControlRejected)))
}

func TestNodeMetrics_TwoNodesOneRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	ramp := NewNodeMetrics(reg, "ramp")
	sine := NewNodeMetrics(reg, "sine")

	ramp.SampleGenerated()
	assert.Equal(t, 1.0, testutil.ToFloat64(ramp.SamplesGenerated))
	assert.Equal(t, 0.0, testutil.ToFloat64(sine.SamplesGenerated))
}

func TestNilMetrics(t *testing.T) {
	var nm *NodeMetrics
	var rm *RelayMetrics

	assert.NotPanics(t, func() {
		nm.SampleGenerated()
		nm.Broadcast(1, 1)
		nm.SetSubscribers(1)
		nm.ControlMessage(ControlApplied)
		rm.Pushed()
		rm.Overwritten()
		rm.Drained(3)
		rm.Frame("ws://x")
		rm.LinkUp()
		rm.LinkDown()
	})
}

func TestRelayMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRelayMetrics(reg)

	m.Pushed()
	m.Pushed()
	m.Overwritten()
	m.Drained(2)
	m.Frame("ws://a")
	m.Frame("ws://a")
	m.Frame("ws://b")
	m.LinkUp()
	m.LinkUp()
	m.LinkDown()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RingPushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RingOverwrites))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RingDrained))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamFrames.WithLabelValues("ws://a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFrames.WithLabelValues("ws://b")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamConnected))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewNodeMetrics(reg, "sine").SampleGenerated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `sigrelay_node_samples_generated_total{node="sine"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
