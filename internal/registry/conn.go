package registry

import "github.com/gorilla/websocket"

// Conn adapts a gorilla WebSocket connection to Sender.
//
// Writes are serialized by the owning Registry's lock, which is the only
// writer of data frames. No write deadline is set.
type Conn struct {
	ws *websocket.Conn
}

// NewConn wraps ws.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Send writes payload as a single text frame.
func (c *Conn) Send(payload []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}
