// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Samples generated and broadcast per node
//   - Subscriber counts and send failures per node
//   - Control messages applied and rejected
//   - Ring buffer pushes, overwrites and drains
//   - Upstream link state and frame rates
//
// Metrics never report errors to clients; they are an operator aid only.
package metrics
