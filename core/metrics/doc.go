// Package metrics exposes Prometheus counters for cleanup runs.
//
// The counters live in the default registry and are served by Handler, which the
// start command mounts at /metrics.
package metrics
