// Package otel bridges goAccount engine metrics to an OpenTelemetry Meter.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter and
// an Int64ObservableGauge per latency bucket. One callback reads
// Engine.MetricsSnapshot on each collection. The caller owns the
// MeterProvider.
package otel
