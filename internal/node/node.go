package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/rickgao/sigrelay/internal/control"
	"github.com/rickgao/sigrelay/internal/endpoint"
	"github.com/rickgao/sigrelay/internal/generator"
	"github.com/rickgao/sigrelay/internal/metrics"
	"github.com/rickgao/sigrelay/internal/registry"
)

// Node is a generator node: one tick loop, one subscriber registry and one
// control channel.
type Node struct {
	name     string
	gen      generator.Generator
	control  control.Channel
	params   func() any
	subs     *registry.Registry
	endpoint *endpoint.Endpoint
	interval time.Duration

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *metrics.NodeMetrics

	active    atomic.Bool
	sampleLog rate.Sometimes
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the clock used for tick sleeps and sample timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(n *Node) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Node) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMetrics sets the node metrics. Nil disables metrics.
func WithMetrics(m *metrics.NodeMetrics) Option {
	return func(n *Node) {
		n.metrics = m
	}
}

// NewRamp creates a ramp node.
func NewRamp(cfg RampConfig, opts ...Option) *Node {
	params := generator.NewRampParams(cfg.Min, cfg.Max)
	return newNode("ramp",
		generator.NewRamp(cfg.ID, params),
		control.NewRampChannel(params),
		func() any { return params.Snapshot() },
		cfg.Interval, opts...)
}

// NewSine creates a sine node.
func NewSine(cfg SineConfig, opts ...Option) *Node {
	params := generator.NewSineParams(cfg.Frequency, cfg.Min, cfg.Max)
	return newNode("sine",
		generator.NewSine(cfg.ID, params, cfg.PhaseStep),
		control.NewSineChannel(params),
		func() any { return params.Snapshot() },
		cfg.Interval, opts...)
}

func newNode(name string, gen generator.Generator, ctrl control.Channel, params func() any, interval time.Duration, opts ...Option) *Node {
	n := &Node{
		name:      name,
		gen:       gen,
		control:   ctrl,
		params:    params,
		subs:      registry.New(),
		interval:  interval,
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		sampleLog: rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("node", name, "id", gen.NodeID())
	n.endpoint = endpoint.New(name, n.subs,
		endpoint.WithLogger(n.logger),
		endpoint.WithMessageHandler(n.handleControl),
		endpoint.WithSubscriberObserver(n.metrics.SetSubscribers),
	)
	n.active.Store(true)
	return n
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Handler returns the node's WebSocket listen endpoint.
func (n *Node) Handler() http.Handler { return n.endpoint }

// Active reports whether the tick loop is still generating.
func (n *Node) Active() bool { return n.active.Load() }

// Subscribers returns the current subscriber count.
func (n *Node) Subscribers() int { return n.subs.Len() }

// Params returns a snapshot of the live generator parameters.
func (n *Node) Params() any { return n.params() }

// Run ticks until ctx is cancelled or a broadcast fails. A failed broadcast
// deactivates the node permanently and is returned.
func (n *Node) Run(ctx context.Context) error {
	if !n.Active() {
		return fmt.Errorf("%s node already stopped", n.name)
	}

	n.logger.Info("generator started", "interval", n.interval, "params", n.params())

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("generator stopped")
			return nil
		case <-n.clock.After(n.interval):
		}

		if err := n.tick(); err != nil {
			n.active.Store(false)
			n.logger.Error("broadcast failed, generator halted", "error", err)
			return fmt.Errorf("%s node halted: %w", n.name, err)
		}
	}
}

// tick produces one sample and broadcasts it to every subscriber.
func (n *Node) tick() error {
	sample := n.gen.Next(n.clock.Now())
	n.metrics.SampleGenerated()

	payload, err := sample.Encode()
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}

	sent, err := n.subs.Broadcast(payload)
	n.metrics.Broadcast(sent, registry.Failures(err))

	n.sampleLog.Do(func() {
		n.logger.Debug("sample broadcast", "value", sample.Value, "timestamp", sample.Timestamp, "subscribers", sent)
	})

	return err
}

func (n *Node) handleControl(h registry.Handle, payload []byte) {
	change, err := n.control.Apply(payload)
	switch {
	case err != nil && change.Empty():
		n.metrics.ControlMessage(metrics.ControlRejected)
		n.logger.Warn("control message rejected", "handle", h.String(), "payload", string(payload), "error", err)
	case err != nil:
		n.metrics.ControlMessage(metrics.ControlRejected)
		n.logger.Warn("control message partially applied", "handle", h.String(), "error", err, "params", n.params())
	case change.Empty():
		n.metrics.ControlMessage(metrics.ControlIgnored)
		n.logger.Debug("control message changed nothing", "handle", h.String(), "payload", string(payload))
	default:
		n.metrics.ControlMessage(metrics.ControlApplied)
		n.logger.Info("parameters updated", "handle", h.String(), "params", n.params())
	}
}
