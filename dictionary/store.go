package dictionary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/internal/cache"
	"github.com/hupe1980/kanakanji/internal/compress"
	"github.com/hupe1980/kanakanji/internal/hash"
	"github.com/hupe1980/kanakanji/internal/manifest"
	"github.com/hupe1980/kanakanji/louds"
	"github.com/hupe1980/kanakanji/loudstxt"
	"github.com/hupe1980/kanakanji/model"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("dictionary: store closed")

// Store reads a published dictionary. It is safe for concurrent use.
//
// Buckets are loaded on first use. Artifacts of blobs that are Mappable and
// uncompressed are used in place; everything else is read, decoded and, for
// shards, kept in the block cache so memory stays bounded.
type Store struct {
	blobs    blobstore.BlobStore
	manifest *manifest.Manifest
	table    *louds.CharTable
	opts     options

	group singleflight.Group

	mu      sync.RWMutex
	buckets map[string]*Bucket
	missing map[string]struct{}
	pinned  []blobstore.Blob // mapped blobs backing loaded artifacts
	closed  bool
}

// Open opens the dictionary CURRENT points at.
func Open(ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*Store, error) {
	m, err := manifest.NewStore(blobs).Load(ctx)
	if err != nil {
		return nil, err
	}
	return OpenManifest(ctx, blobs, m, optFns...)
}

// OpenManifest opens the dictionary version described by m.
func OpenManifest(ctx context.Context, blobs blobstore.BlobStore, m *manifest.Manifest, optFns ...Option) (*Store, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Store{
		blobs:    blobs,
		manifest: m,
		opts:     opts,
		buckets:  make(map[string]*Bucket),
		missing:  make(map[string]struct{}),
	}

	data, _, err := s.readArtifact(ctx, m.CharTable, false)
	if err != nil {
		return nil, err
	}
	table, err := louds.ReadCharTable(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("char table: %w", err)
	}
	s.table = table

	opts.logger.InfoContext(ctx, "dictionary opened",
		"version", m.Dir(),
		"buckets", len(m.Buckets),
		"chars", table.Len(),
		"compression", m.Compression.String(),
	)
	return s, nil
}

// Manifest returns the manifest of the opened version.
func (s *Store) Manifest() *manifest.Manifest {
	return s.manifest
}

// CharTable returns the character table of the dictionary.
func (s *Store) CharTable() *louds.CharTable {
	return s.table
}

// Lookup returns the rows stored for reading. A reading that is not in the
// dictionary yields nil.
func (s *Store) Lookup(ctx context.Context, reading string) []model.Entry {
	start := time.Now()
	var rows []model.Entry
	if b := s.bucketFor(ctx, BucketOf(reading)); b != nil {
		if ids, ok := s.table.Encode(reading); ok {
			if node, ok := b.index.SearchNodeIndex(ids); ok {
				rows = b.Entries(ctx, node)
			}
		}
	}
	s.opts.observer.RecordLookup(len(rows), time.Since(start))
	return rows
}

// PrefixLookup returns the rows of reading and of the readings extending it by
// up to maxDepth characters, visiting at most maxCount trie nodes.
func (s *Store) PrefixLookup(ctx context.Context, reading string, maxDepth, maxCount int) []model.Entry {
	start := time.Now()
	var rows []model.Entry
	if b := s.bucketFor(ctx, BucketOf(reading)); b != nil {
		if ids, ok := s.table.Encode(reading); ok {
			for _, node := range b.index.PrefixNodeIndices(ids, maxDepth, maxCount) {
				rows = append(rows, b.Entries(ctx, node)...)
			}
		}
	}
	s.opts.observer.RecordLookup(len(rows), time.Since(start))
	return rows
}

// Bucket returns the loaded bucket name. Unknown buckets yield nil, nil.
func (s *Store) Bucket(ctx context.Context, name string) (*Bucket, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	b, ok := s.buckets[name]
	_, missing := s.missing[name]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}
	if missing {
		return nil, nil
	}

	info, ok := s.manifest.Bucket(name)
	if !ok {
		s.mu.Lock()
		s.missing[name] = struct{}{}
		s.mu.Unlock()
		return nil, nil
	}

	v, err, _ := s.group.Do("bucket:"+name, func() (any, error) {
		s.mu.RLock()
		b, ok := s.buckets[name]
		s.mu.RUnlock()
		if ok {
			return b, nil
		}
		b, err := s.loadBucket(ctx, info)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, ErrClosed
		}
		s.buckets[name] = b
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bucket), nil
}

// bucketFor is Bucket for lookups: failures are logged and read as a miss.
func (s *Store) bucketFor(ctx context.Context, name string) *Bucket {
	if name == "" {
		return nil
	}
	b, err := s.Bucket(ctx, name)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "bucket unavailable", "bucket", name, "error", err)
		return nil
	}
	return b
}

func (s *Store) loadBucket(ctx context.Context, info manifest.BucketInfo) (*Bucket, error) {
	bitsData, _, err := s.readArtifact(ctx, bitsName(info.ID), true)
	if err != nil {
		return nil, err
	}
	charsData, _, err := s.readArtifact(ctx, charsName(info.ID), true)
	if err != nil {
		return nil, err
	}
	index, err := louds.Load(bitsData, charsData)
	if err != nil {
		return nil, fmt.Errorf("bucket %q: %w", info.Name, err)
	}
	termData, _, err := s.readArtifact(ctx, terminalName(info.ID), false)
	if err != nil {
		return nil, err
	}
	terminal := roaring.New()
	if _, err := terminal.ReadFrom(bytes.NewReader(termData)); err != nil {
		return nil, fmt.Errorf("bucket %q terminal bitmap: %w", info.Name, err)
	}

	s.opts.logger.DebugContext(ctx, "bucket loaded",
		"bucket", info.Name,
		"nodes", index.NodeCount(),
		"readings", terminal.GetCardinality(),
	)
	return &Bucket{
		store:    s,
		info:     info,
		index:    index,
		terminal: terminal,
		mapped:   make([]*loudstxt.Shard, info.Shards),
	}, nil
}

// readArtifact returns the decoded contents of a manifest artifact. With pin
// set, a mappable uncompressed blob stays open and its bytes are returned
// without copying; pinned reports whether that happened.
func (s *Store) readArtifact(ctx context.Context, name string, pin bool) (data []byte, pinned bool, err error) {
	a, err := s.manifest.Artifact(name)
	if err != nil {
		return nil, false, err
	}
	path := s.manifest.Path(name)

	rc := s.opts.controller
	if err := rc.AcquireFetch(ctx); err != nil {
		return nil, false, err
	}
	defer rc.ReleaseFetch()

	blob, err := s.blobs.Open(ctx, path)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = blob.Close()
		}
	}()

	if blob.Size() != a.Stored {
		return nil, false, fmt.Errorf("%s: stored size %d, manifest says %d", path, blob.Size(), a.Stored)
	}
	_, mappable := blob.(blobstore.Mappable)
	if !mappable {
		if err := rc.AcquireIO(ctx, int(blob.Size())); err != nil {
			return nil, false, err
		}
	}
	raw, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	data, err = compress.Decode(raw, s.manifest.Compression)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", path, err)
	}
	if int64(len(data)) != a.Size {
		return nil, false, fmt.Errorf("%s: decoded size %d, manifest says %d", path, len(data), a.Size)
	}
	if s.opts.verify {
		if err := hash.Verify(path, data, a.CRC32C); err != nil {
			return nil, false, err
		}
	}

	if !mappable {
		return data, false, nil
	}
	// Stored frames may alias the mapping too, so only uncompressed pinned
	// artifacts skip the copy.
	if !pin || s.manifest.Compression != compress.None {
		return append([]byte(nil), data...), false, nil
	}
	s.mu.Lock()
	s.pinned = append(s.pinned, blob)
	s.mu.Unlock()
	keep = true
	return data, true, nil
}

// shard returns shard i of bucket b.
func (s *Store) shard(ctx context.Context, b *Bucket, i int) (*loudstxt.Shard, error) {
	b.mu.RLock()
	sh := b.mapped[i]
	b.mu.RUnlock()
	if sh != nil {
		return sh, nil
	}

	name := shardName(b.info.ID, i)
	key := cache.Key{Kind: cache.KindShard, Version: s.manifest.Dir(), Path: name}
	if c := s.opts.cache; c != nil {
		if data, ok := c.Get(ctx, key); ok {
			return loudstxt.Open(data)
		}
	}

	v, err, _ := s.group.Do("shard:"+name, func() (any, error) {
		data, pinned, err := s.readArtifact(ctx, name, true)
		s.opts.observer.RecordShardLoad(len(data), err)
		if err != nil {
			return nil, err
		}
		sh, err := loudstxt.Open(data)
		if err != nil {
			return nil, err
		}
		if pinned {
			b.mu.Lock()
			b.mapped[i] = sh
			b.mu.Unlock()
		} else if c := s.opts.cache; c != nil {
			c.Set(ctx, key, data)
		}
		return sh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loudstxt.Shard), nil
}

// Close releases mapped artifacts and drops cached shards of this version.
// Entries returned earlier stay valid.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, b := range s.pinned {
		errs = append(errs, b.Close())
	}
	s.pinned = nil
	s.buckets = nil
	if c := s.opts.cache; c != nil {
		version := s.manifest.Dir()
		c.Invalidate(func(k cache.Key) bool {
			return k.Kind == cache.KindShard && k.Version == version
		})
	}
	return errors.Join(errs...)
}

// Bucket is one loaded trie with its shards.
type Bucket struct {
	store    *Store
	info     manifest.BucketInfo
	index    *louds.Index
	terminal *roaring.Bitmap

	mu     sync.RWMutex
	mapped []*loudstxt.Shard
}

// Info returns the manifest record of the bucket.
func (b *Bucket) Info() manifest.BucketInfo {
	return b.info
}

// Index returns the trie of the bucket.
func (b *Bucket) Index() *louds.Index {
	return b.index
}

// HasEntries reports whether node carries rows.
func (b *Bucket) HasEntries(node int) bool {
	return node >= 0 && b.terminal.Contains(uint32(node))
}

// Slot returns the rows of node, reporting load and decode errors.
func (b *Bucket) Slot(ctx context.Context, node int) ([]model.Entry, error) {
	if !b.HasEntries(node) {
		return nil, nil
	}
	shard, slot := loudstxt.Locate(node, b.store.manifest.ShardShift)
	if shard >= len(b.mapped) {
		return nil, fmt.Errorf("%w: node %d beyond %d shards", loudstxt.ErrSlotRange, node, len(b.mapped))
	}
	sh, err := b.store.shard(ctx, b, shard)
	if err != nil {
		return nil, err
	}
	return sh.Slot(slot)
}

// Entries returns the rows of node. Unreadable slots yield nil and are
// logged.
func (b *Bucket) Entries(ctx context.Context, node int) []model.Entry {
	rows, err := b.Slot(ctx, node)
	if err != nil {
		b.store.opts.logger.WarnContext(ctx, "dictionary slot unreadable",
			"bucket", b.info.Name,
			"node", node,
			"error", err,
		)
		return nil
	}
	return rows
}
