// sigrelay runs the ramp, sine and relay nodes.
// Usage: go run ./cmd/sigrelay --config configs/sigrelay.example.yaml --nodes ramp,sine,relay
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/sigrelay/internal/config"
	"github.com/rickgao/sigrelay/internal/logging"
	"github.com/rickgao/sigrelay/internal/metrics"
	"github.com/rickgao/sigrelay/internal/node"
	"github.com/rickgao/sigrelay/internal/relay"
	"github.com/rickgao/sigrelay/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and environment only when empty)")
	nodesFlag := flag.String("nodes", "ramp,sine,relay", "comma-separated nodes to run")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	logger.Info("starting sigrelay",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	enabled, err := parseNodes(*nodesFlag)
	if err != nil {
		logger.Error("invalid -nodes flag", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, enabled, logger); err != nil {
		logger.Error("sigrelay failed", "error", err)
		os.Exit(1)
	}

	logger.Info("sigrelay stopped")
}

// run binds every listener before starting any loop, so a relay in the same
// process finds its upstreams already accepting connections.
func run(ctx context.Context, cfg *config.Config, enabled map[string]bool, logger *slog.Logger) error {
	reg := metrics.NewRegistry()
	g, ctx := errgroup.WithContext(ctx)

	type service struct {
		name    string
		addr    string
		handler http.Handler
		loop    func(context.Context) error
	}
	var services []service

	if enabled["ramp"] {
		n := node.NewRamp(node.RampConfig{
			ID:       cfg.Ramp.ID,
			Min:      cfg.Ramp.Min,
			Max:      cfg.Ramp.Max,
			Interval: cfg.Ramp.Interval,
		}, node.WithLogger(logger), node.WithMetrics(metrics.NewNodeMetrics(reg, "ramp")))
		services = append(services, service{"ramp", cfg.Ramp.Listen.Addr, route(cfg.Ramp.Listen.Path, n.Handler()), nodeLoop(n, logger)})
	}

	if enabled["sine"] {
		n := node.NewSine(node.SineConfig{
			ID:        cfg.Sine.ID,
			Frequency: cfg.Sine.Frequency,
			Min:       cfg.Sine.Min,
			Max:       cfg.Sine.Max,
			PhaseStep: cfg.Sine.PhaseStep,
			Interval:  cfg.Sine.Interval,
		}, node.WithLogger(logger), node.WithMetrics(metrics.NewNodeMetrics(reg, "sine")))
		services = append(services, service{"sine", cfg.Sine.Listen.Addr, route(cfg.Sine.Listen.Path, n.Handler()), nodeLoop(n, logger)})
	}

	if enabled["relay"] {
		r := relay.New(relay.Config{
			Upstreams:     cfg.Relay.Upstreams,
			DrainInterval: cfg.Relay.DrainInterval,
			Capacity:      cfg.Relay.Capacity,
			LinkBuffer:    cfg.Relay.LinkBuffer,
			StopTimeout:   shutdownTimeout,
		}, relay.WithLogger(logger), relay.WithMetrics(metrics.NewNodeMetrics(reg, "relay"), metrics.NewRelayMetrics(reg)))
		services = append(services, service{"relay", cfg.Relay.Listen.Addr, route(cfg.Relay.Listen.Path, r.Handler()), r.Run})
	}

	if cfg.Metrics.Port > 0 {
		services = append(services, service{
			name:    "metrics",
			addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			handler: route(cfg.Metrics.Path, metrics.Handler(reg)),
		})
	}

	listeners := make([]net.Listener, len(services))
	for i, svc := range services {
		ln, err := net.Listen("tcp", svc.addr)
		if err != nil {
			for _, open := range listeners[:i] {
				open.Close()
			}
			return fmt.Errorf("listen %s on %s: %w", svc.name, svc.addr, err)
		}
		listeners[i] = ln
		logger.Info("listening", "service", svc.name, "addr", ln.Addr().String())
	}

	for i, svc := range services {
		svc := svc
		srv := &http.Server{Handler: svc.handler}
		ln := listeners[i]
		g.Go(func() error { return serve(ctx, srv, ln) })
		if svc.loop != nil {
			g.Go(func() error { return svc.loop(ctx) })
		}
	}

	return g.Wait()
}

// nodeLoop runs a generator node. A halted node is not a process failure:
// its endpoint keeps serving while the other nodes carry on.
func nodeLoop(n *node.Node, logger *slog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := n.Run(ctx); err != nil {
			logger.Warn("node no longer generating", "node", n.Name(), "error", err)
		}
		return nil
	}
}

func route(path string, h http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	return mux
}

func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseNodes(s string) (map[string]bool, error) {
	enabled := make(map[string]bool)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "ramp", "sine", "relay":
			enabled[name] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown node %q", name)
		}
	}
	if len(enabled) == 0 {
		return nil, errors.New("no nodes selected")
	}
	return enabled, nil
}
