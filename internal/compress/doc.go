// Package compress wraps whole dictionary artifacts for distribution.
//
// A compressed artifact is framed as:
//
//	[uncompressed uint32][compressed uint32][data]
//
// A compressed size of 0 means the payload is stored raw, which happens when
// compression does not save at least 10%.
package compress
