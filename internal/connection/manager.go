package connection

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rickgao/sigrelay/internal/metrics"
	"github.com/rickgao/sigrelay/internal/model"
)

// Sink receives every upstream frame as its raw text plus receipt timestamp.
type Sink interface {
	Push(value, timestamp string)
}

// Manager owns the relay's upstream links.
type Manager interface {
	// Start opens every link in the background and returns immediately.
	Start(ctx context.Context) error

	// Stop closes all links and waits for their goroutines.
	Stop(ctx context.Context) error

	// Stats returns the current state of every link.
	Stats() ManagerStats
}

// link holds the state for a single upstream connection.
type link struct {
	url    string
	client Client

	mu     sync.Mutex
	state  LinkState
	frames atomic.Int64
}

func (l *link) setState(s LinkState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
}

func (l *link) stats() LinkStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LinkStats{URL: l.url, State: l.state, Frames: l.frames.Load()}
}

// manager implements the Manager interface.
type manager struct {
	cfg     ManagerConfig
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.RelayMetrics

	links []*link

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a link manager pushing into sink. m may be nil.
func NewManager(cfg ManagerConfig, sink Sink, m *metrics.RelayMetrics, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	mgr := &manager{
		cfg:     cfg,
		sink:    sink,
		logger:  logger,
		metrics: m,
	}

	for _, url := range cfg.URLs {
		clientCfg := DefaultClientConfig()
		clientCfg.URL = url
		clientCfg.Clock = cfg.Clock
		if cfg.BufferSize > 0 {
			clientCfg.BufferSize = cfg.BufferSize
		}
		mgr.links = append(mgr.links, &link{
			url:    url,
			client: NewClient(clientCfg, logger.With("upstream", url)),
			state:  StateConnecting,
		})
	}

	return mgr
}

// Start launches one goroutine per link. Links connect independently; a
// failed connect is logged and that link stays down.
func (m *manager) Start(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)

	for _, l := range m.links {
		m.wg.Add(1)
		go m.run(ctx, l)
	}

	m.logger.Info("link manager started", "upstreams", len(m.links))
	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping link manager")

	if m.cancel != nil {
		m.cancel()
	}

	for _, l := range m.links {
		l.client.Close()
	}

	// Wait for goroutines with timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, abandoning links")
		return ctx.Err()
	}

	m.logger.Info("link manager stopped")
	return nil
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	stats := ManagerStats{Links: make([]LinkStats, 0, len(m.links))}
	for _, l := range m.links {
		s := l.stats()
		if s.State == StateConnected {
			stats.ConnectedCount++
		}
		stats.Links = append(stats.Links, s)
	}
	return stats
}

// run connects one link and forwards its frames to the sink until the link
// ends or ctx is cancelled.
func (m *manager) run(ctx context.Context, l *link) {
	defer m.wg.Done()

	if err := l.client.Connect(ctx); err != nil {
		l.setState(StateFailed)
		m.logger.Error("upstream connect failed", "upstream", l.url, "error", err)
		return
	}

	l.setState(StateConnected)
	m.metrics.LinkUp()
	m.logger.Info("upstream connected", "upstream", l.url)

	defer func() {
		l.setState(StateClosed)
		m.metrics.LinkDown()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-l.client.Errors():
			m.drain(l)
			m.logger.Warn("upstream link closed", "upstream", l.url, "frames", l.frames.Load(), "error", err)
			return

		case msg := <-l.client.Messages():
			m.forward(l, msg)
		}
	}
}

func (m *manager) forward(l *link, msg TimestampedMessage) {
	m.sink.Push(string(msg.Data), model.FormatTimestamp(msg.ReceivedAt))
	l.frames.Add(1)
	m.metrics.Frame(l.url)
}

// drain forwards frames still buffered when the read side ended.
func (m *manager) drain(l *link) {
	for {
		select {
		case msg := <-l.client.Messages():
			m.forward(l, msg)
		default:
			return
		}
	}
}
