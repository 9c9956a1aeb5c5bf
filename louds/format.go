package louds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

const (
	// BitsExt is the file extension of the LOUDS bit vector.
	BitsExt = ".louds"
	// CharsExt is the file extension of the node→char table.
	CharsExt = ".loudschars2"
	// CharTableFile is the file name of the CharTable.
	CharTableFile = "charID.chid"
)

// ErrCorrupt is returned when LOUDS artifacts are inconsistent.
var ErrCorrupt = errors.New("louds: corrupt index")

// MarshalBits encodes the bit vector as little-endian uint64 words.
func (x *Index) MarshalBits() []byte {
	buf := make([]byte, len(x.bits)*8)
	for i, w := range x.bits {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// MarshalChars returns the node→char table. The slice is shared with the Index.
func (x *Index) MarshalChars() []byte {
	return x.chars
}

// Load decodes an Index from the .louds and .loudschars2 payloads. charsData
// is retained without copying, so it may point into a read-only mapping.
func Load(bitsData, charsData []byte) (*Index, error) {
	if len(bitsData)%8 != 0 {
		return nil, fmt.Errorf("%w: bit vector length %d is not a multiple of 8", ErrCorrupt, len(bitsData))
	}
	if len(charsData) == 0 {
		return nil, fmt.Errorf("%w: empty char table", ErrCorrupt)
	}
	words := make([]uint64, len(bitsData)/8)
	zeros := 0
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(bitsData[i*8:])
		zeros += bits.OnesCount64(^words[i])
	}
	// One terminator per node plus the super-root's.
	if zeros != len(charsData)+1 {
		return nil, fmt.Errorf("%w: %d terminators for %d nodes", ErrCorrupt, zeros, len(charsData))
	}
	return New(words, charsData), nil
}
