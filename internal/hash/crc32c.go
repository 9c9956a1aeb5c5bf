package hash

import (
	"fmt"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// MismatchError reports an artifact whose checksum differs from its record.
type MismatchError struct {
	Name string
	Want uint32
	Got  uint32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want %08x, got %08x", e.Name, e.Want, e.Got)
}

// Verify checks data against want.
func Verify(name string, data []byte, want uint32) error {
	if got := CRC32C(data); got != want {
		return &MismatchError{Name: name, Want: want, Got: got}
	}
	return nil
}
