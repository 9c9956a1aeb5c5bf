package bitset

import (
	"math"
	"math/bits"
)

// WordBits is the number of bits per storage word.
const WordBits = 64

// Appender builds an append-only bit vector.
//
// Bit i of the vector lives in word i/64 at position 63-(i%64), so the first
// appended bit is the most significant bit of word 0.
type Appender struct {
	words []uint64
	n     uint64
}

// NewAppender creates an Appender with room for capacity bits.
func NewAppender(capacity int) *Appender {
	return &Appender{
		words: make([]uint64, 0, (capacity+WordBits-1)/WordBits),
	}
}

// Append appends one bit.
func (a *Appender) Append(bit bool) {
	wordIdx := a.n / WordBits
	if wordIdx >= uint64(len(a.words)) {
		a.words = append(a.words, 0)
	}
	if bit {
		a.words[wordIdx] |= uint64(1) << (WordBits - 1 - a.n%WordBits)
	}
	a.n++
}

// Len returns the number of appended bits.
func (a *Appender) Len() uint64 {
	return a.n
}

// PadOnes fills the remainder of the last word with 1 bits.
// It returns the number of padding bits added.
func (a *Appender) PadOnes() int {
	rem := int(a.n % WordBits)
	if rem == 0 {
		return 0
	}
	pad := WordBits - rem
	a.words[len(a.words)-1] |= math.MaxUint64 >> rem
	a.n += uint64(pad)
	return pad
}

// Words returns the backing words. The slice is shared with the Appender.
func (a *Appender) Words() []uint64 {
	return a.words
}

// SelectZero returns the bit offset (0..63, MSB-first) of the k-th zero bit
// (0-based) in word, or -1 if the word has k or fewer zeros.
func SelectZero(word uint64, k int) int {
	zeros := bits.Reverse64(^word)
	if bits.OnesCount64(zeros) <= k {
		return -1
	}
	for ; k > 0; k-- {
		zeros &= zeros - 1
	}
	return bits.TrailingZeros64(zeros)
}
