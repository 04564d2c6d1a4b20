package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sigrelay"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// NodeMetrics holds per-node broadcast metrics. A nil *NodeMetrics is valid
// and records nothing.
type NodeMetrics struct {
	SamplesGenerated prometheus.Counter
	FramesSent       prometheus.Counter
	SendFailures     prometheus.Counter
	Subscribers      prometheus.Gauge
	ControlMessages  *prometheus.CounterVec
}

// NewNodeMetrics creates and registers metrics labelled with the node name.
func NewNodeMetrics(reg prometheus.Registerer, node string) *NodeMetrics {
	labels := prometheus.Labels{"node": node}
	m := &NodeMetrics{
		SamplesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "node",
			Name:        "samples_generated_total",
			Help:        "Total number of samples produced by the generator.",
			ConstLabels: labels,
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "node",
			Name:        "frames_sent_total",
			Help:        "Total number of frames delivered to subscribers.",
			ConstLabels: labels,
		}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "node",
			Name:        "send_failures_total",
			Help:        "Total number of failed subscriber sends.",
			ConstLabels: labels,
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "node",
			Name:        "subscribers",
			Help:        "Number of registered subscribers.",
			ConstLabels: labels,
		}),
		ControlMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "node",
			Name:        "control_messages_total",
			Help:        "Control messages received, by result.",
			ConstLabels: labels,
		}, []string{"result"}),
	}

	reg.MustRegister(m.SamplesGenerated, m.FramesSent, m.SendFailures, m.Subscribers, m.ControlMessages)
	return m
}

// SampleGenerated counts one generated sample.
func (m *NodeMetrics) SampleGenerated() {
	if m == nil {
		return
	}
	m.SamplesGenerated.Inc()
}

// Broadcast records the outcome of one registry broadcast.
func (m *NodeMetrics) Broadcast(sent, failed int) {
	if m == nil {
		return
	}
	m.FramesSent.Add(float64(sent))
	m.SendFailures.Add(float64(failed))
}

// SetSubscribers records the current subscriber count.
func (m *NodeMetrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.Subscribers.Set(float64(n))
}

// Control results.
const (
	ControlApplied  = "applied"
	ControlRejected = "rejected"
	ControlIgnored  = "ignored"
)

// ControlMessage counts one control message by result.
func (m *NodeMetrics) ControlMessage(result string) {
	if m == nil {
		return
	}
	m.ControlMessages.WithLabelValues(result).Inc()
}

// RelayMetrics holds ring buffer and upstream link metrics. A nil
// *RelayMetrics is valid and records nothing.
type RelayMetrics struct {
	RingPushes        prometheus.Counter
	RingOverwrites    prometheus.Counter
	RingDrained       prometheus.Counter
	UpstreamFrames    *prometheus.CounterVec
	UpstreamConnected prometheus.Gauge
}

// NewRelayMetrics creates and registers relay metrics.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	m := &RelayMetrics{
		RingPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ring",
			Name:      "pushes_total",
			Help:      "Total number of records pushed into the ring buffer.",
		}),
		RingOverwrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ring",
			Name:      "overwrites_total",
			Help:      "Total number of unread records overwritten before a drain.",
		}),
		RingDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ring",
			Name:      "drained_total",
			Help:      "Total number of records drained from the ring buffer.",
		}),
		UpstreamFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "frames_total",
			Help:      "Frames received per upstream link.",
		}, []string{"url"}),
		UpstreamConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "connected_links",
			Help:      "Number of upstream links currently connected.",
		}),
	}

	reg.MustRegister(m.RingPushes, m.RingOverwrites, m.RingDrained, m.UpstreamFrames, m.UpstreamConnected)
	return m
}

// Pushed counts one ring push.
func (m *RelayMetrics) Pushed() {
	if m == nil {
		return
	}
	m.RingPushes.Inc()
}

// Overwritten counts one overwritten ring slot.
func (m *RelayMetrics) Overwritten() {
	if m == nil {
		return
	}
	m.RingOverwrites.Inc()
}

// Drained counts n drained records.
func (m *RelayMetrics) Drained(n int) {
	if m == nil {
		return
	}
	m.RingDrained.Add(float64(n))
}

// Frame counts one frame from the upstream at url.
func (m *RelayMetrics) Frame(url string) {
	if m == nil {
		return
	}
	m.UpstreamFrames.WithLabelValues(url).Inc()
}

// LinkUp records an upstream link connecting.
func (m *RelayMetrics) LinkUp() {
	if m == nil {
		return
	}
	m.UpstreamConnected.Inc()
}

// LinkDown records an upstream link ending.
func (m *RelayMetrics) LinkDown() {
	if m == nil {
		return
	}
	m.UpstreamConnected.Dec()
}
