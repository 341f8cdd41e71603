// Package prometheus renders engine metrics in the Prometheus text
// exposition format without depending on a client library. Mount
// [PrometheusExporter.Handler] at /metrics.
package prometheus
