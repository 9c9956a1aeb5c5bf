package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/kanakanji/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the CachingStore block granularity.
const DefaultBlockSize = 64 << 10

// CachingStore puts a block cache in front of a remote BlobStore. Shard
// files are read slot by slot, so repeated lookups under one reading hit the
// cache instead of the network.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore wraps inner. blockSize <= 0 selects DefaultBlockSize.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{inner: inner, cache: c, blockSize: blockSize}
}

// Open opens the inner blob and wraps it.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

// Put writes through and drops cached blocks of name.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete deletes through and drops cached blocks of name.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.Key) bool {
		return key.Kind == cache.KindBlob && key.Path == name
	})
}

// CachingBlob reads through the block cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

// Size returns the inner size.
func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

// Close closes the inner blob.
func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) key(blk int64) cache.Key {
	return cache.Key{Kind: cache.KindBlob, Path: b.name, Offset: blk}
}

// ReadAt fills missing blocks, fetching contiguous runs in parallel, then
// copies from the cache.
func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}

	want := p
	if end := off + int64(len(p)); end > size {
		want = p[:size-off]
	}
	first := off / b.blockSize
	last := (off + int64(len(want)) - 1) / b.blockSize

	fetched, err := b.fill(ctx, first, last)
	if err != nil {
		return 0, err
	}

	n := 0
	for blk := first; blk <= last; blk++ {
		data, ok := fetched[blk]
		if !ok {
			if data, ok = b.cache.Get(ctx, b.key(blk)); !ok {
				return n, fmt.Errorf("blobstore: block %d of %s vanished", blk, b.name)
			}
		}
		start := blk * b.blockSize
		lo := max(start, off) - start
		hi := min(start+int64(len(data)), off+int64(len(want))) - start
		if hi <= lo {
			break
		}
		n += copy(want[max(start, off)-off:], data[lo:hi])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type blockRun struct {
	start, count int64
}

// fill loads the missing blocks in [first, last] and returns them so the
// caller does not depend on the cache retaining them.
func (b *CachingBlob) fill(ctx context.Context, first, last int64) (map[int64][]byte, error) {
	var runs []blockRun
	for blk := first; blk <= last; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].start+runs[n-1].count == blk {
			runs[n-1].count++
			continue
		}
		runs = append(runs, blockRun{start: blk, count: 1})
	}
	if len(runs) == 0 {
		return nil, nil
	}

	results := make([]map[int64][]byte, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i, run := range runs {
		g.Go(func() error {
			blocks, err := b.fetchRun(gctx, run)
			results[i] = blocks
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetched := make(map[int64][]byte)
	for _, blocks := range results {
		for blk, data := range blocks {
			fetched[blk] = data
		}
	}
	return fetched, nil
}

func (b *CachingBlob) fetchRun(ctx context.Context, run blockRun) (map[int64][]byte, error) {
	start := run.start * b.blockSize
	length := min(run.count*b.blockSize, b.Size()-start)
	if length <= 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	n, err := b.inner.ReadAt(ctx, buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]

	blocks := make(map[int64][]byte, run.count)
	for i := int64(0); i < run.count; i++ {
		lo := i * b.blockSize
		if lo >= int64(len(buf)) {
			break
		}
		hi := min(lo+b.blockSize, int64(len(buf)))
		// Copy so a cached block does not pin the whole run.
		block := append([]byte(nil), buf[lo:hi]...)
		blocks[run.start+i] = block
		b.cache.Set(ctx, b.key(run.start+i), block)
	}
	return blocks, nil
}
