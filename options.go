package kanakanji

import (
	"log/slog"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/costs"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	blobs            blobstore.BlobStore
	overlays         []costs.Overlay
	blocked          []string
	typo             func(reading string) []string
	typoPenalty      float32
}

// Option configures Open.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kanakanji.BasicMetricsCollector{}
//	eng, _ := kanakanji.Open(ctx, cfg, kanakanji.WithMetricsCollector(metrics))
//	// ... convert ...
//	stats := metrics.GetStats()
//	fmt.Printf("Conversions: %d, Avg latency: %dns\n", stats.ConversionCount, stats.ConversionAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations. Without it the
// engine logs as the configuration's log section says.
//
// Example with JSON logging:
//
//	logger := kanakanji.NewJSONLogger(slog.LevelInfo)
//	eng, _ := kanakanji.Open(ctx, cfg, kanakanji.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithBlobStore reads the dictionary from store instead of the configured
// source.
func WithBlobStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobs = store
	}
}

// WithOverlay adds an overlay searched after the user dictionary.
func WithOverlay(ov costs.Overlay) Option {
	return func(o *options) {
		if ov != nil {
			o.overlays = append(o.overlays, ov)
		}
	}
}

// WithBlockedWords removes words from every conversion.
func WithBlockedWords(words ...string) Option {
	return func(o *options) {
		o.blocked = append(o.blocked, words...)
	}
}

// WithTypoVariants replaces the alternative readings used when typo
// correction is enabled. The default swaps the size of one kana.
func WithTypoVariants(fn func(reading string) []string, penalty float32) Option {
	return func(o *options) {
		o.typo = fn
		o.typoPenalty = penalty
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		typo:             costs.KanaSizeVariants,
		typoPenalty:      costs.DefaultTypoPenalty,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
