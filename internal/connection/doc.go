// Package connection implements the relay's upstream links.
//
// The link manager:
//   - Opens one WebSocket client connection per configured upstream URL
//   - Stamps every received frame with its local receipt time
//   - Pushes each frame, unparsed, into the relay's ring buffer
//   - Logs a failed connect or a dropped link and does not reconnect
package connection
