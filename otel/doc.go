// Package otel provides an embedis.MetricsCollector implementation backed
// by OpenTelemetry instruments.
//
// # Overview
//
// This package implements the embedis.MetricsCollector interface,
// enabling observability with automatic percentile calculation (p50, p95,
// p99) via OTEL histograms and multi-backend export (Prometheus, Jaeger,
// DataDog, Grafana). It is a separate module so the embedis core carries
// zero OTEL dependencies; applications that don't need metrics don't pay
// for them (embedis.NoOpMetricsCollector is the zero-cost default).
//
// # Quick Start
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := otel.NewCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng := embedis.WithConfig(embedis.Config{
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - engine_op_latency_ns (histogram, "op" attribute): per-operation latency
//   - engine_hits_total / engine_misses_total (counters, "op" attribute): read outcomes
//   - engine_errors_total (counter, "op" attribute): operations that returned an error
//   - engine_evictions_total (counter, "policy" attribute): memory accountant evictions
//   - engine_expirations_total (counter): sweeper or lazy-purge removals
//
// # Prometheus Queries
//
// P99 latency for GET specifically:
//
//	histogram_quantile(0.99, rate(engine_op_latency_ns_bucket{op="GET"}[5m]))
//
// Hit ratio across all read ops:
//
//	sum(rate(engine_hits_total[5m])) /
//	(sum(rate(engine_hits_total[5m])) + sum(rate(engine_misses_total[5m])))
//
// Eviction rate by policy:
//
//	rate(engine_evictions_total[1m]) * 60
//
// # Configuration
//
// Custom meter name (useful when multiple Engine instances share one
// MeterProvider):
//
//	collector, err := otel.NewCollector(provider, otel.WithMeterName("orders_engine"))
//
// # Thread Safety
//
// All methods are safe for concurrent use; the underlying OTEL instruments
// are themselves safe for concurrent use. No locks are held by this
// package's own code.
package otel
