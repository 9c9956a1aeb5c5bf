package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/internal/compress"
)

const (
	// FileName is the manifest name inside a version directory.
	FileName = "manifest.json"
	// CurrentVersion is the manifest format version.
	CurrentVersion = 1
)

// Manifest describes one published dictionary.
type Manifest struct {
	Version     int                 `json:"version"`
	ID          uint64              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	ShardShift  uint                `json:"shard_shift"`
	Compression compress.Type       `json:"compression"`
	CharTable   string              `json:"char_table"`
	Buckets     []BucketInfo        `json:"buckets"`
	Artifacts   map[string]Artifact `json:"artifacts"`
}

// BucketInfo describes the trie and shards of one bucket.
type BucketInfo struct {
	// Name is the literal bucket key: a reading's first character or a
	// reserved overlay name.
	Name string `json:"name"`
	// ID is the escaped identifier used in artifact names.
	ID       string `json:"id"`
	Nodes    int    `json:"nodes"`
	Readings int    `json:"readings"`
	Entries  int    `json:"entries"`
	Shards   int    `json:"shards"`
}

// Artifact describes one stored file.
type Artifact struct {
	// Size is the decoded size; Stored is the size after compression.
	Size   int64  `json:"size"`
	Stored int64  `json:"stored"`
	CRC32C uint32 `json:"crc32c"`
}

// New creates an empty manifest.
func New(shardShift uint, c compress.Type) *Manifest {
	return &Manifest{
		Version:     CurrentVersion,
		ShardShift:  shardShift,
		Compression: c,
		Artifacts:   make(map[string]Artifact),
	}
}

// Dir returns the version directory of the manifest.
func (m *Manifest) Dir() string {
	return Dir(m.ID)
}

// Dir returns the version directory for id.
func Dir(id uint64) string {
	return fmt.Sprintf("v%06d", id)
}

// Path returns the store name of an artifact of this manifest.
func (m *Manifest) Path(artifact string) string {
	return path.Join(m.Dir(), artifact)
}

// Bucket returns the BucketInfo named name.
func (m *Manifest) Bucket(name string) (BucketInfo, bool) {
	i := sort.Search(len(m.Buckets), func(i int) bool { return m.Buckets[i].Name >= name })
	if i < len(m.Buckets) && m.Buckets[i].Name == name {
		return m.Buckets[i], true
	}
	return BucketInfo{}, false
}

// AddBucket records b, keeping Buckets sorted by name.
func (m *Manifest) AddBucket(b BucketInfo) {
	i := sort.Search(len(m.Buckets), func(i int) bool { return m.Buckets[i].Name >= b.Name })
	if i < len(m.Buckets) && m.Buckets[i].Name == b.Name {
		m.Buckets[i] = b
		return
	}
	m.Buckets = append(m.Buckets, BucketInfo{})
	copy(m.Buckets[i+1:], m.Buckets[i:])
	m.Buckets[i] = b
}

// Artifact looks up the record for name.
func (m *Manifest) Artifact(name string) (Artifact, error) {
	a, ok := m.Artifacts[name]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrUnknownArtifact, name)
	}
	return a, nil
}

// Store loads and saves manifests on a blobstore.
type Store struct {
	store blobstore.BlobStore
	mu    sync.Mutex
}

// NewStore creates a manifest Store.
func NewStore(store blobstore.BlobStore) *Store {
	return &Store{store: store}
}

// Load loads the manifest CURRENT points at.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (*Manifest, error) {
	current, err := blobstore.Get(ctx, s.store, blobstore.CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.read(ctx, strings.TrimSpace(string(current)))
}

// LoadVersion loads the manifest of version id.
func (s *Store) LoadVersion(ctx context.Context, id uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, path.Join(Dir(id), FileName))
}

func (s *Store) read(ctx context.Context, name string) (*Manifest, error) {
	content, err := blobstore.Get(ctx, s.store, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	m := &Manifest{}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", name, err)
	}
	if m.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrIncompatibleVersion, m.Version)
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]Artifact)
	}
	return m, nil
}

// NextID returns the id the next Save should use.
func (s *Store) NextID(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if errors.Is(err, ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return m.ID + 1, nil
}

// ListVersions returns the ids that have a manifest, ascending.
func (s *Store) ListVersions(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.store.List(ctx, "v")
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, name := range names {
		dir, file := path.Split(name)
		if file != FileName {
			continue
		}
		var id uint64
		if _, err := fmt.Sscanf(strings.TrimSuffix(dir, "/"), "v%d", &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Save writes m below its version directory and points CURRENT at it. The
// artifacts must already be stored.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	name := m.Path(FileName)
	if err := s.store.Put(ctx, name, content); err != nil {
		return err
	}
	return s.store.Put(ctx, blobstore.CurrentName, []byte(name))
}

// DeleteVersion removes every blob of version id. The current version is
// refused.
func (s *Store) DeleteVersion(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, err := s.load(ctx); err == nil && cur.ID == id {
		return fmt.Errorf("manifest: refusing to delete current version %d", id)
	}
	names, err := s.store.List(ctx, Dir(id)+"/")
	if err != nil {
		return err
	}
	// Manifest last, so a partial delete still leaves a listable version.
	sort.SliceStable(names, func(i, j int) bool {
		return path.Base(names[j]) == FileName && path.Base(names[i]) != FileName
	})
	for _, name := range names {
		if err := s.store.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Prune deletes all but the newest keep versions, never the current one.
func (s *Store) Prune(ctx context.Context, keep int) ([]uint64, error) {
	ids, err := s.ListVersions(ctx)
	if err != nil {
		return nil, err
	}
	if keep < 1 {
		keep = 1
	}
	if len(ids) <= keep {
		return nil, nil
	}
	var deleted []uint64
	for _, id := range ids[:len(ids)-keep] {
		if err := s.DeleteVersion(ctx, id); err != nil {
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}
