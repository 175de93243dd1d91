// Package observe holds the OpenTelemetry instruments recorded by airwave.
//
// Instruments are created from a metric.MeterProvider so tests can inspect
// them through a ManualReader. A nil *Metrics is valid and records nothing,
// which keeps callers free of nil checks when metrics are disabled.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all airwave metrics.
const meterName = "github.com/MrSnakeDoc/airwave"

// Metrics holds all metric instruments for the application.
type Metrics struct {
	// MirrorProbes counts liveness probes. Attribute: result (ok|failed).
	MirrorProbes metric.Int64Counter

	// MirrorEvictions counts hosts removed from the candidate pool.
	// Attribute: reason (probe|listing).
	MirrorEvictions metric.Int64Counter

	// StationFetches counts station listing fetches.
	// Attribute: result (ok|transport|invalid).
	StationFetches metric.Int64Counter

	// StationsCached reports the size of the last committed listing.
	StationsCached metric.Int64Gauge

	// Searches counts search requests. Attribute: outcome (hit|empty|error).
	Searches metric.Int64Counter

	// SearchDuration tracks search latency.
	SearchDuration metric.Float64Histogram
}

// searchBuckets covers warm searches (milliseconds) and cold ones that
// wait on the 30s station fetch.
var searchBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.MirrorProbes, err = m.Int64Counter("airwave.mirror.probes",
		metric.WithDescription("Mirror liveness probes by result."),
	); err != nil {
		return nil, err
	}
	if met.MirrorEvictions, err = m.Int64Counter("airwave.mirror.evictions",
		metric.WithDescription("Mirror hosts evicted from the candidate pool by reason."),
	); err != nil {
		return nil, err
	}
	if met.StationFetches, err = m.Int64Counter("airwave.stations.fetches",
		metric.WithDescription("Station listing fetches by result."),
	); err != nil {
		return nil, err
	}
	if met.StationsCached, err = m.Int64Gauge("airwave.stations.cached",
		metric.WithDescription("Number of stations in the committed listing."),
	); err != nil {
		return nil, err
	}
	if met.Searches, err = m.Int64Counter("airwave.search.requests",
		metric.WithDescription("Search requests by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SearchDuration, err = m.Float64Histogram("airwave.search.duration",
		metric.WithDescription("Latency of search requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(searchBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordProbe records the result of one liveness probe.
func (m *Metrics) RecordProbe(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.MirrorProbes.Add(ctx, 1, metric.WithAttributes(attribute.String("result", okLabel(ok))))
}

// RecordEviction records a host leaving the candidate pool.
func (m *Metrics) RecordEviction(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.MirrorEvictions.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordFetch records one station listing fetch.
func (m *Metrics) RecordFetch(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.StationFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordCached records the size of a committed listing.
func (m *Metrics) RecordCached(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.StationsCached.Record(ctx, int64(count))
}

// RecordSearch records one search and its latency.
func (m *Metrics) RecordSearch(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Searches.Add(ctx, 1, attrs)
	m.SearchDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
