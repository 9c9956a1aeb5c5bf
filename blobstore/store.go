package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist. It matches
// os.ErrNotExist so local and remote stores agree under errors.Is.
var ErrNotFound = os.ErrNotExist

// CurrentName is the blob naming the manifest of the published dictionary.
const CurrentName = "CURRENT"

// BlobStore stores immutable named blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically: readers see either the old or the new
	// contents.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Size() int64
	Close() error
}

// Mappable is implemented by blobs whose contents are already in memory.
type Mappable interface {
	// Bytes returns the contents without copying. The slice is valid until
	// the Blob is closed.
	Bytes() []byte
}

// ReadAll returns the whole contents of b, without copying when b is
// Mappable.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes(), nil
	}
	buf := make([]byte, b.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return nil, err
	}
	if n != len(buf) {
		return nil, fmt.Errorf("blobstore: short read %d of %d bytes", n, len(buf))
	}
	return buf, nil
}

// Get opens name, reads it whole and closes it. The result never aliases a
// mapping.
func Get(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data, err := ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if _, ok := b.(Mappable); ok {
		data = append([]byte(nil), data...)
	}
	return data, nil
}

// readAt copies from data the way io.ReaderAt specifies.
func readAt(data, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
