package dictionary

import (
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/kanakanji/internal/cache"
	"github.com/hupe1980/kanakanji/internal/compress"
	"github.com/hupe1980/kanakanji/internal/resource"
	"github.com/hupe1980/kanakanji/loudstxt"
)

// Observer receives load and lookup measurements. The root package's
// MetricsCollector implements it.
type Observer interface {
	RecordLookup(hits int, d time.Duration)
	RecordShardLoad(bytes int, err error)
}

type noopObserver struct{}

func (noopObserver) RecordLookup(int, time.Duration) {}
func (noopObserver) RecordShardLoad(int, error)      {}

type options struct {
	logger      *slog.Logger
	observer    Observer
	shardShift  uint
	compression compress.Type
	concurrency int
	cache       cache.BlockCache
	controller  *resource.Controller
	verify      bool
}

func defaultOptions() options {
	return options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:    noopObserver{},
		shardShift:  loudstxt.DefaultShardShift,
		compression: compress.None,
		concurrency: runtime.GOMAXPROCS(0),
		verify:      true,
	}
}

// Option configures a Builder or a Store.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the metrics sink.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithShardShift sets log2 of the slots per shard (builder only).
func WithShardShift(shift uint) Option {
	return func(o *options) {
		o.shardShift = shift
	}
}

// WithCompression compresses the written artifacts (builder only).
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// WithConcurrency bounds parallel shard encoding (builder only).
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithCache caches decoded shards of blobs that cannot be mapped (store only).
func WithCache(c cache.BlockCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithResourceController bounds concurrent fetches and fetch bandwidth
// (store only).
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithVerify enables CRC32C verification of loaded artifacts (store only,
// default true).
func WithVerify(v bool) Option {
	return func(o *options) {
		o.verify = v
	}
}
