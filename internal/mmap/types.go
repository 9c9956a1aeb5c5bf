package mmap

import "errors"

// AccessPattern is a paging hint.
type AccessPattern int

const (
	// AccessDefault clears any previous hint.
	AccessDefault AccessPattern = iota
	// AccessSequential suits full scans such as checksum verification.
	AccessSequential
	// AccessRandom suits slot lookups in shards.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch, used for LOUDS vectors.
	AccessWillNeed
	// AccessDontNeed releases cached pages.
	AccessDontNeed
)

var (
	// ErrClosed is returned when using a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files that cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
