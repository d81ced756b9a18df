// Package metrics exposes alert routing counters in the Prometheus text
// format on its own registry.
package metrics
