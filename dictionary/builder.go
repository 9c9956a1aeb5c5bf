package dictionary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/internal/compress"
	"github.com/hupe1980/kanakanji/internal/hash"
	"github.com/hupe1980/kanakanji/internal/manifest"
	"github.com/hupe1980/kanakanji/louds"
	"github.com/hupe1980/kanakanji/loudstxt"
	"github.com/hupe1980/kanakanji/model"
)

var (
	// ErrEmptyReading is returned for entries without a reading.
	ErrEmptyReading = errors.New("dictionary: empty reading")
	// ErrInvalidBucket is returned for bucket names that are neither reserved
	// nor a single character.
	ErrInvalidBucket = errors.New("dictionary: invalid bucket")
	// ErrTooManyRows is returned when one reading has more rows than a slot
	// can count.
	ErrTooManyRows = errors.New("dictionary: too many rows for one reading")
	// ErrTabInText is returned for a reading or word holding a tab, which
	// separates the words of a shard slot.
	ErrTabInText = errors.New("dictionary: tab in reading or word")
)

// Builder collects entries and writes a dictionary version.
type Builder struct {
	store blobstore.BlobStore
	table *louds.CharTable
	opts  options

	// buckets[name][reading] keeps rows in insertion order.
	buckets map[string]map[string][]model.Entry
}

// NewBuilder creates a Builder writing to store. table maps reading characters
// to the byte ids stored in the tries.
func NewBuilder(store blobstore.BlobStore, table *louds.CharTable, optFns ...Option) (*Builder, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.shardShift == 0 || opts.shardShift > loudstxt.MaxShardShift {
		return nil, fmt.Errorf("dictionary: shard shift %d out of range [1, %d]", opts.shardShift, loudstxt.MaxShardShift)
	}
	return &Builder{
		store:   store,
		table:   table,
		opts:    opts,
		buckets: make(map[string]map[string][]model.Entry),
	}, nil
}

// Add adds e to the bucket of its reading.
func (b *Builder) Add(e model.Entry) error {
	if e.Reading == "" {
		return ErrEmptyReading
	}
	return b.AddTo(BucketOf(e.Reading), e)
}

// AddTo adds e to the named bucket. Overlay dictionaries use the reserved
// bucket names.
func (b *Builder) AddTo(bucket string, e model.Entry) error {
	if e.Reading == "" {
		return ErrEmptyReading
	}
	if strings.ContainsRune(e.Reading, '\t') || strings.ContainsRune(e.Word, '\t') {
		return fmt.Errorf("%w: %q %q", ErrTabInText, e.Reading, e.Word)
	}
	if !IsReserved(bucket) && utf8.RuneCountInString(bucket) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidBucket, bucket)
	}
	if _, ok := b.table.Encode(e.Reading); !ok {
		return fmt.Errorf("%w in reading %q", louds.ErrUnknownChar, e.Reading)
	}
	readings, ok := b.buckets[bucket]
	if !ok {
		readings = make(map[string][]model.Entry)
		b.buckets[bucket] = readings
	}
	if len(readings[e.Reading]) == 0xFFFF {
		return fmt.Errorf("%w: %q", ErrTooManyRows, e.Reading)
	}
	readings[e.Reading] = append(readings[e.Reading], e)
	return nil
}

// Len returns the number of entries added.
func (b *Builder) Len() int {
	n := 0
	for _, readings := range b.buckets {
		for _, rows := range readings {
			n += len(rows)
		}
	}
	return n
}

// Build writes all artifacts of a new version and returns its manifest. The
// version is not visible to readers until Publish.
func (b *Builder) Build(ctx context.Context) (*manifest.Manifest, error) {
	ms := manifest.NewStore(b.store)
	id, err := ms.NextID(ctx)
	if err != nil {
		return nil, err
	}

	m := manifest.New(b.opts.shardShift, b.opts.compression)
	m.ID = id
	m.CharTable = louds.CharTableFile

	w := &artifactWriter{store: b.store, m: m, compression: b.opts.compression}

	var chars bytes.Buffer
	if _, err := b.table.WriteTo(&chars); err != nil {
		return nil, err
	}
	if err := w.write(ctx, louds.CharTableFile, chars.Bytes()); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(b.buckets))
	for name := range b.buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info, err := b.buildBucket(ctx, w, name, b.buckets[name])
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", name, err)
		}
		m.AddBucket(info)
	}

	b.opts.logger.InfoContext(ctx, "dictionary built",
		"version", m.Dir(),
		"buckets", len(m.Buckets),
		"artifacts", len(m.Artifacts),
		"compression", m.Compression.String(),
	)
	return m, nil
}

func (b *Builder) buildBucket(ctx context.Context, w *artifactWriter, name string, readings map[string][]model.Entry) (manifest.BucketInfo, error) {
	id := EscapeIdentifier(name)

	lb := louds.NewBuilder(b.table)
	entries := 0
	for reading, rows := range readings {
		if err := lb.Add(reading); err != nil {
			return manifest.BucketInfo{}, err
		}
		entries += len(rows)
	}
	index, nodes := lb.Build()

	terminal := roaring.New()
	perShard := 1 << b.opts.shardShift
	shardCount := (index.NodeCount() + perShard - 1) / perShard
	slots := make([][][]model.Entry, shardCount)
	for i := range slots {
		slots[i] = make([][]model.Entry, perShard)
	}
	for reading, node := range nodes {
		shard, slot := loudstxt.Locate(node, b.opts.shardShift)
		slots[shard][slot] = readings[reading]
		terminal.Add(uint32(node))
	}
	terminal.RunOptimize()

	var tb bytes.Buffer
	if _, err := terminal.WriteTo(&tb); err != nil {
		return manifest.BucketInfo{}, err
	}
	if err := w.write(ctx, bitsName(id), index.MarshalBits()); err != nil {
		return manifest.BucketInfo{}, err
	}
	if err := w.write(ctx, charsName(id), index.MarshalChars()); err != nil {
		return manifest.BucketInfo{}, err
	}
	if err := w.write(ctx, terminalName(id), tb.Bytes()); err != nil {
		return manifest.BucketInfo{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.concurrency)
	for shard := range slots {
		g.Go(func() error {
			data, err := loudstxt.Encode(slots[shard])
			if err != nil {
				return fmt.Errorf("shard %d: %w", shard, err)
			}
			return w.write(gctx, shardName(id, shard), data)
		})
	}
	if err := g.Wait(); err != nil {
		return manifest.BucketInfo{}, err
	}

	b.opts.logger.DebugContext(ctx, "bucket built",
		"bucket", name,
		"id", id,
		"nodes", index.NodeCount(),
		"readings", len(readings),
		"shards", shardCount,
	)
	return manifest.BucketInfo{
		Name:     name,
		ID:       id,
		Nodes:    index.NodeCount(),
		Readings: len(readings),
		Entries:  entries,
		Shards:   shardCount,
	}, nil
}

// Publish points CURRENT at m.
func (b *Builder) Publish(ctx context.Context, m *manifest.Manifest) error {
	if err := manifest.NewStore(b.store).Save(ctx, m); err != nil {
		return err
	}
	b.opts.logger.InfoContext(ctx, "dictionary published", "version", m.Dir())
	return nil
}

// artifactWriter compresses, checksums and stores artifacts of one version.
type artifactWriter struct {
	store       blobstore.BlobStore
	compression compress.Type

	mu sync.Mutex
	m  *manifest.Manifest
}

func (w *artifactWriter) write(ctx context.Context, name string, data []byte) error {
	stored, err := compress.Encode(data, w.compression)
	if err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	if err := w.store.Put(ctx, w.m.Path(name), stored); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.m.Artifacts[name] = manifest.Artifact{
		Size:   int64(len(data)),
		Stored: int64(len(stored)),
		CRC32C: hash.CRC32C(data),
	}
	return nil
}
