package kanakanji

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kanakanji/converter"
	"github.com/hupe1980/kanakanji/dictionary"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    conversions *prometheus.CounterVec
//	    latency     prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordConversion(strategy string, candidates int, d time.Duration) {
//	    p.conversions.WithLabelValues(strategy).Inc()
//	    p.latency.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordConversion is called after each conversion with the strategy
	// name, the number of complete paths and the time taken.
	RecordConversion(strategy string, candidates int, d time.Duration)

	// RecordLookup is called after each dictionary lookup through the
	// Store with the number of rows found.
	RecordLookup(hits int, d time.Duration)

	// RecordShardLoad is called after each shard fetch. bytes is the decoded
	// size, err is nil if successful.
	RecordShardLoad(bytes int, err error)
}

var (
	_ converter.Observer  = MetricsCollector(nil)
	_ dictionary.Observer = MetricsCollector(nil)
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConversion(string, int, time.Duration) {}
func (NoopMetricsCollector) RecordLookup(int, time.Duration)             {}
func (NoopMetricsCollector) RecordShardLoad(int, error)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ConversionCount      atomic.Int64
	ConversionCandidates atomic.Int64
	ConversionTotalNanos atomic.Int64
	LookupCount          atomic.Int64
	LookupHits           atomic.Int64
	LookupTotalNanos     atomic.Int64
	ShardLoads           atomic.Int64
	ShardBytes           atomic.Int64
	ShardErrors          atomic.Int64

	mu         sync.Mutex
	strategies map[string]int64
}

// RecordConversion implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConversion(strategy string, candidates int, d time.Duration) {
	b.ConversionCount.Add(1)
	b.ConversionCandidates.Add(int64(candidates))
	b.ConversionTotalNanos.Add(d.Nanoseconds())

	b.mu.Lock()
	if b.strategies == nil {
		b.strategies = make(map[string]int64)
	}
	b.strategies[strategy]++
	b.mu.Unlock()
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hits int, d time.Duration) {
	b.LookupCount.Add(1)
	b.LookupHits.Add(int64(hits))
	b.LookupTotalNanos.Add(d.Nanoseconds())
}

// RecordShardLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShardLoad(bytes int, err error) {
	b.ShardLoads.Add(1)
	if err != nil {
		b.ShardErrors.Add(1)
		return
	}
	b.ShardBytes.Add(int64(bytes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	strategies := make(map[string]int64, len(b.strategies))
	for k, v := range b.strategies {
		strategies[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		ConversionCount:    b.ConversionCount.Load(),
		ConversionAvgNanos: avg(b.ConversionTotalNanos.Load(), b.ConversionCount.Load()),
		Strategies:         strategies,
		Candidates:         b.ConversionCandidates.Load(),
		LookupCount:        b.LookupCount.Load(),
		LookupHits:         b.LookupHits.Load(),
		LookupAvgNanos:     avg(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		ShardLoads:         b.ShardLoads.Load(),
		ShardBytes:         b.ShardBytes.Load(),
		ShardErrors:        b.ShardErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConversionCount    int64
	ConversionAvgNanos int64
	// Strategies counts conversions per strategy name.
	Strategies     map[string]int64
	Candidates     int64
	LookupCount    int64
	LookupHits     int64
	LookupAvgNanos int64
	ShardLoads     int64
	ShardBytes     int64
	ShardErrors    int64
}
