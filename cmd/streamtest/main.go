// streamtest subscribes to a node endpoint and streams samples to the console.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/ws
//
// With --control, the given JSON is sent once after connecting, e.g.
//
//	go run ./cmd/streamtest --url ws://localhost:8765/ws --control '{"Value_min": 0, "Value_max": 5}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rickgao/sigrelay/internal/connection"
	"github.com/rickgao/sigrelay/internal/logging"
	"github.com/rickgao/sigrelay/internal/model"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "node endpoint to subscribe to")
	control := flag.String("control", "", "control message to send after connecting")
	verbose := flag.Bool("verbose", false, "print every sample")
	statsEvery := flag.Duration("stats", 2*time.Second, "interval between latest-per-id summaries")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel, "text")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := connection.DefaultClientConfig()
	cfg.URL = *url
	client := connection.NewClient(cfg, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()
	logger.Info("connected", "url", *url)

	if *control != "" {
		if err := client.Send([]byte(*control)); err != nil {
			logger.Error("failed to send control message", "error", err)
			os.Exit(1)
		}
		logger.Info("control message sent", "payload", *control)
	}

	latest := newTracker()

	// Summary printer
	go func() {
		ticker := time.NewTicker(*statsEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(latest.Summary())
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "samples", latest.Total())
			return

		case err := <-client.Errors():
			logger.Error("connection closed", "error", err)
			fmt.Print(latest.Summary())
			os.Exit(1)

		case msg := <-client.Messages():
			handleFrame(latest, msg, *verbose, logger)
		}
	}
}

func handleFrame(t *tracker, msg connection.TimestampedMessage, verbose bool, logger *slog.Logger) {
	sample, err := model.DecodeSample(msg.Data)
	if err != nil {
		logger.Warn("unparseable frame", "data", string(msg.Data), "error", err)
		return
	}
	t.Observe(sample, msg.ReceivedAt)

	if verbose {
		fmt.Printf("[%s] id=%d value=%.4f sent=%s\n",
			model.FormatTimestamp(msg.ReceivedAt), sample.ID, sample.Value, sample.Timestamp)
	}
}

// tracker keeps the most recent sample per node id.
type tracker struct {
	mu     sync.Mutex
	latest map[int]model.Sample
	seen   map[int]time.Time
	counts map[int]int64
}

func newTracker() *tracker {
	return &tracker{
		latest: make(map[int]model.Sample),
		seen:   make(map[int]time.Time),
		counts: make(map[int]int64),
	}
}

// Observe records s as the latest sample for its id.
func (t *tracker) Observe(s model.Sample, receivedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[s.ID] = s
	t.seen[s.ID] = receivedAt
	t.counts[s.ID]++
}

// Latest returns the most recent sample for id.
func (t *tracker) Latest(id int) (model.Sample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.latest[id]
	return s, ok
}

// Total returns the number of samples observed across all ids.
func (t *tracker) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int64
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Summary renders one line per id, ordered by id.
func (t *tracker) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]int, 0, len(t.latest))
	for id := range t.latest {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		s := t.latest[id]
		fmt.Fprintf(&b, "id=%d latest=%.4f at=%s received=%s count=%d\n",
			id, s.Value, s.Timestamp, model.FormatTimestamp(t.seen[id]), t.counts[id])
	}
	return b.String()
}
