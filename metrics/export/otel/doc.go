// Package otel bridges engine metrics into an OpenTelemetry meter through
// observable instruments. Counters and cumulative histogram buckets are read
// from the engine snapshot on every collection cycle.
package otel
