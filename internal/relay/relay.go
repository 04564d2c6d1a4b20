// Package relay implements the relay node: it subscribes to upstream nodes,
// buffers every received frame in a ring, and periodically forwards the
// buffered frames, verbatim and in order, to its own subscribers.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/rickgao/sigrelay/internal/buffer"
	"github.com/rickgao/sigrelay/internal/connection"
	"github.com/rickgao/sigrelay/internal/endpoint"
	"github.com/rickgao/sigrelay/internal/metrics"
	"github.com/rickgao/sigrelay/internal/registry"
)

// Config configures the relay node.
type Config struct {
	Upstreams     []string
	DrainInterval time.Duration
	Capacity      int
	LinkBuffer    int
	StopTimeout   time.Duration
}

// DefaultConfig returns the relay defaults.
func DefaultConfig() Config {
	return Config{
		Upstreams:     connection.DefaultManagerConfig().URLs,
		DrainInterval: 10 * time.Millisecond,
		Capacity:      buffer.DefaultCapacity,
		LinkBuffer:    connection.DefaultClientConfig().BufferSize,
		StopTimeout:   5 * time.Second,
	}
}

// Stats is a point-in-time view of the relay.
type Stats struct {
	Ring        buffer.Stats
	Links       connection.ManagerStats
	Subscribers int
	Forwarded   int64
}

// Relay is the relay node.
type Relay struct {
	cfg      Config
	ring     *buffer.Ring
	links    connection.Manager
	subs     *registry.Registry
	endpoint *endpoint.Endpoint

	clock        clockwork.Clock
	logger       *slog.Logger
	nodeMetrics  *metrics.NodeMetrics
	relayMetrics *metrics.RelayMetrics

	forwarded atomic.Int64
	sampleLog rate.Sometimes
}

// Option configures a Relay.
type Option func(*Relay)

// WithClock sets the clock for the drain loop and receipt timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Relay) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the subscriber-side and buffer-side metrics. Either may be nil.
func WithMetrics(node *metrics.NodeMetrics, relay *metrics.RelayMetrics) Option {
	return func(r *Relay) {
		r.nodeMetrics = node
		r.relayMetrics = relay
	}
}

// New creates a relay node. Links are not opened until Run.
func New(cfg Config, opts ...Option) *Relay {
	r := &Relay{
		cfg:       cfg,
		subs:      registry.New(),
		clock:     clockwork.NewRealClock(),
		logger:    slog.Default(),
		sampleLog: rate.Sometimes{Interval: time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("node", "relay")

	r.ring = buffer.NewRing(cfg.Capacity, buffer.WithOverwriteHook(r.relayMetrics.Overwritten))
	r.links = connection.NewManager(connection.ManagerConfig{
		URLs:       cfg.Upstreams,
		BufferSize: cfg.LinkBuffer,
		Clock:      r.clock,
	}, ringSink{ring: r.ring, metrics: r.relayMetrics}, r.relayMetrics, r.logger)

	r.endpoint = endpoint.New("relay", r.subs,
		endpoint.WithLogger(r.logger),
		endpoint.WithMessageHandler(r.handleInbound),
		endpoint.WithSubscriberObserver(r.nodeMetrics.SetSubscribers),
	)
	return r
}

// Handler returns the relay's WebSocket listen endpoint.
func (r *Relay) Handler() http.Handler { return r.endpoint }

// Stats returns current relay statistics.
func (r *Relay) Stats() Stats {
	return Stats{
		Ring:        r.ring.Stats(),
		Links:       r.links.Stats(),
		Subscribers: r.subs.Len(),
		Forwarded:   r.forwarded.Load(),
	}
}

// Run opens the upstream links and drains the ring on a fixed interval until
// ctx is cancelled. Send failures never stop the relay.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.links.Start(ctx); err != nil {
		return err
	}

	r.logger.Info("relay started",
		"upstreams", r.cfg.Upstreams,
		"drain_interval", r.cfg.DrainInterval,
		"capacity", r.ring.Cap(),
	)

	for {
		select {
		case <-ctx.Done():
			return r.stop()
		case <-r.clock.After(r.cfg.DrainInterval):
		}
		r.drain()
	}
}

func (r *Relay) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.StopTimeout)
	defer cancel()

	err := r.links.Stop(ctx)
	r.logger.Info("relay stopped", "forwarded", r.forwarded.Load(), "pending", r.ring.Len())
	return err
}

// drain forwards every buffered record, oldest first, to every subscriber.
// Returns the number of records drained.
func (r *Relay) drain() int {
	records := r.ring.Drain()
	if len(records) == 0 {
		return 0
	}
	r.relayMetrics.Drained(len(records))

	for _, rec := range records {
		sent, err := r.subs.Broadcast([]byte(rec.Value))
		r.nodeMetrics.Broadcast(sent, registry.Failures(err))
		if err != nil {
			r.logger.Warn("forward failed", "error", err)
		}
	}
	r.forwarded.Add(int64(len(records)))

	last := records[len(records)-1]
	r.sampleLog.Do(func() {
		r.logger.Debug("drained ring", "records", len(records), "last_received", last.Timestamp, "subscribers", r.subs.Len())
	})
	return len(records)
}

func (r *Relay) handleInbound(h registry.Handle, payload []byte) {
	r.nodeMetrics.ControlMessage(metrics.ControlIgnored)
	r.logger.Debug("ignoring inbound message", "handle", h.String(), "payload", string(payload))
}

// ringSink feeds upstream frames into the ring.
type ringSink struct {
	ring    *buffer.Ring
	metrics *metrics.RelayMetrics
}

func (s ringSink) Push(value, timestamp string) {
	s.ring.Push(value, timestamp)
	s.metrics.Pushed()
}
