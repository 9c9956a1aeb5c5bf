package cache

import "context"

// Kind separates key spaces.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindShard        // decoded loudstxt3 shard payloads
	KindIndex        // LOUDS bit vectors and char tables
	KindBlob         // raw byte ranges read through blobstore.CachingStore
)

// Key identifies a cached block. Version pins entries to one published
// dictionary so a new CURRENT never serves stale blocks.
type Key struct {
	Kind    Kind
	Version string
	Path    string
	// Offset is the block start for ranged reads, 0 for whole artifacts.
	Offset int64
}

// BlockCache is a byte-oriented cache. Returned slices are read-only.
type BlockCache interface {
	Get(ctx context.Context, key Key) ([]byte, bool)
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	Stats() (hits, misses int64)
	Close() error
}
