// Package node runs the broadcast nodes: a generator ticking on a fixed
// interval, fanning each sample out to every subscriber of its listen
// endpoint, and accepting control messages from those same subscribers.
//
// A node stops generating after the first tick on which any subscriber send
// fails. Its endpoint keeps accepting connections and control messages.
package node
