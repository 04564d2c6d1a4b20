// Package endpoint serves the WebSocket listen endpoint shared by every node.
//
// Each accepted connection is registered as a subscriber for its whole
// lifetime. Inbound text frames are handed to a message hook; the connection
// is removed from the registry when its read side ends for any reason.
package endpoint

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rickgao/sigrelay/internal/registry"
)

// MessageFunc handles one inbound frame from a subscriber.
type MessageFunc func(h registry.Handle, payload []byte)

// Endpoint is an http.Handler that upgrades requests to WebSocket
// subscribers of one registry.
type Endpoint struct {
	name      string
	subs      *registry.Registry
	upgrader  websocket.Upgrader
	onMessage MessageFunc
	onChange  func(subscribers int)
	logger    *slog.Logger
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Endpoint) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMessageHandler sets the inbound frame hook. Without one, inbound
// frames are read and discarded.
func WithMessageHandler(fn MessageFunc) Option {
	return func(e *Endpoint) {
		e.onMessage = fn
	}
}

// WithSubscriberObserver is called with the registry size after every
// open and close.
func WithSubscriberObserver(fn func(subscribers int)) Option {
	return func(e *Endpoint) {
		e.onChange = fn
	}
}

// New creates an endpoint that registers connections in subs.
func New(name string, subs *registry.Registry, opts ...Option) *Endpoint {
	e := &Endpoint{
		name: name,
		subs: subs,
		upgrader: websocket.Upgrader{
			// No origin or auth checks: any client may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("node", name)
	return e
}

// ServeHTTP upgrades the request and blocks until the connection closes.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		e.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	h := registry.NewHandle()
	e.subs.Add(h, registry.NewConn(ws))
	e.logger.Info("subscriber connected", "handle", h.String(), "remote", r.RemoteAddr)
	e.changed()

	err = e.readLoop(h, ws)

	e.subs.Remove(h)
	_ = ws.Close()
	e.changed()

	if isNormalClose(err) {
		e.logger.Info("subscriber disconnected", "handle", h.String())
	} else {
		e.logger.Warn("subscriber connection failed", "handle", h.String(), "error", err)
	}
}

func (e *Endpoint) readLoop(h registry.Handle, ws *websocket.Conn) error {
	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			e.logger.Debug("ignoring non-text frame", "handle", h.String(), "type", msgType)
			continue
		}
		if e.onMessage != nil {
			e.onMessage(h, data)
		}
	}
}

func (e *Endpoint) changed() {
	if e.onChange != nil {
		e.onChange(e.subs.Len())
	}
}

func isNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
