package cache

import (
	"context"
	"encoding/binary"
	"hash/maphash"

	"github.com/hupe1980/kanakanji/internal/resource"
)

const numShards = 64

// ShardedLRUBlockCache splits its capacity over independent LRUs to reduce
// lock contention between sessions.
type ShardedLRUBlockCache struct {
	shards [numShards]*LRUBlockCache
	seed   maphash.Seed
}

// NewShardedLRUBlockCache creates a sharded cache of capacity bytes total.
func NewShardedLRUBlockCache(capacity int64, rc *resource.Controller) *ShardedLRUBlockCache {
	per := max(capacity/numShards, 1)
	s := &ShardedLRUBlockCache{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i] = NewLRUBlockCache(per, rc)
	}
	return s
}

func (s *ShardedLRUBlockCache) shard(key Key) *LRUBlockCache {
	var h maphash.Hash
	h.SetSeed(s.seed)
	var buf [9]byte
	buf[0] = byte(key.Kind)
	binary.LittleEndian.PutUint64(buf[1:], uint64(key.Offset))
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString(key.Version)
	_, _ = h.WriteString(key.Path)
	return s.shards[h.Sum64()%numShards]
}

// Get returns a cached block.
func (s *ShardedLRUBlockCache) Get(ctx context.Context, key Key) ([]byte, bool) {
	return s.shard(key).Get(ctx, key)
}

// Set caches b.
func (s *ShardedLRUBlockCache) Set(ctx context.Context, key Key, b []byte) {
	s.shard(key).Set(ctx, key, b)
}

// Invalidate removes entries matching the predicate from every shard.
func (s *ShardedLRUBlockCache) Invalidate(predicate func(key Key) bool) {
	for _, sh := range s.shards {
		sh.Invalidate(predicate)
	}
}

// Stats sums hit and miss counts over all shards.
func (s *ShardedLRUBlockCache) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the cached bytes over all shards.
func (s *ShardedLRUBlockCache) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}

// Close closes every shard.
func (s *ShardedLRUBlockCache) Close() error {
	for _, sh := range s.shards {
		_ = sh.Close()
	}
	return nil
}
