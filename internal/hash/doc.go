// Package hash provides the CRC32-Castagnoli checksums recorded for every
// dictionary artifact in the manifest.
package hash
