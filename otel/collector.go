// collector.go: embedis.MetricsCollector backed by OpenTelemetry instruments
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"
	"time"

	"github.com/agilira/embedis"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Collector implements embedis.MetricsCollector using OpenTelemetry
// instruments: one latency histogram shared across every operation name
// (distinguished by an "op" attribute) plus hit/miss/eviction/expiration
// counters, following the teacher library's otel/collector.go shape
// (Int64Histogram for latency, Int64Counter for discrete events).
//
// Thread-safety: safe for concurrent use; the underlying OTEL instruments
// are themselves safe for concurrent use.
type Collector struct {
	opLatency   metric.Int64Histogram
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	errors      metric.Int64Counter
	evictions   metric.Int64Counter
	expirations metric.Int64Counter
}

// Options configures Collector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/embedis".
	MeterName string
}

// Option is a functional option for configuring Collector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple Engine instances under one MeterProvider.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewCollector creates a Collector bound to provider, registering:
//   - engine_op_latency_ns: histogram of per-operation latency, tagged with an "op" attribute
//   - engine_hits_total / engine_misses_total: read outcome counters, tagged with "op"
//   - engine_errors_total: counter of operations that returned a non-nil error, tagged with "op"
//   - engine_evictions_total: counter of keys removed by the memory accountant, tagged with "policy"
//   - engine_expirations_total: counter of keys removed by the sweeper or a lazy purge
func NewCollector(provider metric.MeterProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/embedis"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &Collector{}

	var err error
	c.opLatency, err = meter.Int64Histogram(
		"engine_op_latency_ns",
		metric.WithDescription("Latency of engine operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.hits, err = meter.Int64Counter(
		"engine_hits_total",
		metric.WithDescription("Total number of reads that found a live value"),
	)
	if err != nil {
		return nil, err
	}

	c.misses, err = meter.Int64Counter(
		"engine_misses_total",
		metric.WithDescription("Total number of reads that found no live value"),
	)
	if err != nil {
		return nil, err
	}

	c.errors, err = meter.Int64Counter(
		"engine_errors_total",
		metric.WithDescription("Total number of operations that returned a non-nil error"),
	)
	if err != nil {
		return nil, err
	}

	c.evictions, err = meter.Int64Counter(
		"engine_evictions_total",
		metric.WithDescription("Total number of keys removed by the memory accountant"),
	)
	if err != nil {
		return nil, err
	}

	c.expirations, err = meter.Int64Counter(
		"engine_expirations_total",
		metric.WithDescription("Total number of keys removed by the sweeper or a lazy purge"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// RecordOp implements embedis.MetricsCollector.
func (c *Collector) RecordOp(op string, latency time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	c.opLatency.Record(context.Background(), latency.Nanoseconds(), attrs)
	if err != nil {
		c.errors.Add(context.Background(), 1, attrs)
	}
}

// RecordHit implements embedis.MetricsCollector.
func (c *Collector) RecordHit(op string) {
	c.hits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordMiss implements embedis.MetricsCollector.
func (c *Collector) RecordMiss(op string) {
	c.misses.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordEviction implements embedis.MetricsCollector.
func (c *Collector) RecordEviction(policy embedis.Policy) {
	c.evictions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("policy", policy.String())))
}

// RecordExpiration implements embedis.MetricsCollector.
func (c *Collector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

// Compile-time interface check.
var _ embedis.MetricsCollector = (*Collector)(nil)
