package connection

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL        string          // WebSocket URL (e.g., ws://localhost:8765/ws)
	BufferSize int             // Message channel buffer size
	Clock      clockwork.Clock // Receipt timestamps (nil = real clock)
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize: 1024,
	}
}

// ManagerConfig configures the link manager.
type ManagerConfig struct {
	URLs       []string        // Upstream node endpoints, one link each
	BufferSize int             // Per-link message channel buffer size
	Clock      clockwork.Clock // Receipt timestamps (nil = real clock)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		URLs: []string{
			"ws://localhost:8765/ws",
			"ws://localhost:8766/ws",
		},
		BufferSize: 1024,
	}
}

// LinkState is the lifecycle state of one upstream link.
type LinkState string

const (
	StateConnecting LinkState = "connecting"
	StateConnected  LinkState = "connected"
	StateFailed     LinkState = "failed" // connect failed; never retried
	StateClosed     LinkState = "closed" // was connected, then ended
)

// LinkStats describes one upstream link.
type LinkStats struct {
	URL    string
	State  LinkState
	Frames int64
}

// ManagerStats provides statistics about the link manager.
type ManagerStats struct {
	ConnectedCount int
	Links          []LinkStats
}
