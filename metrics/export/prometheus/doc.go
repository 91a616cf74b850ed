// Package prometheus renders goAccount engine metrics in Prometheus text
// exposition format.
//
// [Exporter.Handler] is meant to be mounted at /metrics. Counter names are
// prefixed goaccount_ and end in _total; the single histogram is
// goaccount_flow_latency_seconds. Nothing is registered globally.
package prometheus
