package louds

import (
	"math"
	"math/bits"
	"sort"

	"github.com/hupe1980/kanakanji/internal/bitset"
)

// Root is the node index of the trie root.
const Root = 0

// Index is a read-only LOUDS trie.
type Index struct {
	bits  []uint64
	chars []byte

	// zeroRank[w] is the number of 0 bits in bits[:w].
	zeroRank []uint32

	// Node indices grouped by char id (counting sort, ascending within a group):
	// charNodes[charOffsets[c]:charOffsets[c+1]].
	charOffsets [257]int32
	charNodes   []int32
}

// New creates an Index over a LOUDS bit vector and its node→char table.
// The slices are retained, not copied.
func New(words []uint64, chars []byte) *Index {
	x := &Index{
		bits:     words,
		chars:    chars,
		zeroRank: make([]uint32, len(words)+1),
	}

	var zeros uint32
	for i, w := range words {
		x.zeroRank[i] = zeros
		zeros += uint32(bits.OnesCount64(^w))
	}
	x.zeroRank[len(words)] = zeros

	var counts [256]int32
	for node := 1; node < len(chars); node++ {
		counts[chars[node]]++
	}
	for c := 0; c < 256; c++ {
		x.charOffsets[c+1] = x.charOffsets[c] + counts[c]
	}
	x.charNodes = make([]int32, x.charOffsets[256])
	next := x.charOffsets
	for node := 1; node < len(chars); node++ {
		c := chars[node]
		x.charNodes[next[c]] = int32(node)
		next[c]++
	}
	return x
}

// NodeCount returns the number of nodes including the root.
func (x *Index) NodeCount() int {
	return len(x.chars)
}

// Char returns the char id stored at node.
func (x *Index) Char(node int) byte {
	if node < 0 || node >= len(x.chars) {
		return 0
	}
	return x.chars[node]
}

// ChildNodeIndices returns the half-open range [start, end) of the children of
// parent. The range is empty for leaves and out-of-range parents.
func (x *Index) ChildNodeIndices(parent int) (start, end int) {
	if parent < 0 || parent >= len(x.chars) {
		return 0, 0
	}
	left := x.select0(parent)
	if left < 0 {
		return 0, 0
	}
	right := x.nextZero(left + 1)
	if right < 0 {
		return 0, 0
	}
	return left - parent, right - parent - 1
}

// SearchCharNodeIndex returns the child of parent labeled with char.
func (x *Index) SearchCharNodeIndex(parent int, char byte) (int, bool) {
	start, end := x.ChildNodeIndices(parent)
	if start >= end {
		return -1, false
	}
	group := x.charNodes[x.charOffsets[char]:x.charOffsets[int(char)+1]]
	i := sort.Search(len(group), func(i int) bool { return int(group[i]) >= start })
	if i < len(group) && int(group[i]) < end {
		return int(group[i]), true
	}
	return -1, false
}

// SearchNodeIndex walks chars from the root and returns the node reached.
// An empty key resolves to the root.
func (x *Index) SearchNodeIndex(chars []byte) (int, bool) {
	node := Root
	for _, c := range chars {
		next, ok := x.SearchCharNodeIndex(node, c)
		if !ok {
			return -1, false
		}
		node = next
	}
	return node, true
}

// PrefixNodeIndices returns the node reached by chars followed by its
// descendants within maxDepth additional characters, breadth first, capped at
// maxCount results overall.
func (x *Index) PrefixNodeIndices(chars []byte, maxDepth, maxCount int) []int {
	if maxCount <= 0 {
		return nil
	}
	node, ok := x.SearchNodeIndex(chars)
	if !ok {
		return nil
	}

	type item struct {
		node  int
		depth int
	}
	result := []int{node}
	queue := []item{{node: node}}
	for len(queue) > 0 && len(result) < maxCount {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		start, end := x.ChildNodeIndices(cur.node)
		for child := start; child < end; child++ {
			if len(result) >= maxCount {
				break
			}
			result = append(result, child)
			queue = append(queue, item{node: child, depth: cur.depth + 1})
		}
	}
	return result
}

// select0 returns the bit position of the k-th 0 bit (0-based), or -1.
func (x *Index) select0(k int) int {
	n := len(x.bits)
	if k < 0 || n == 0 || k >= int(x.zeroRank[n]) {
		return -1
	}
	w := x.zeroWord(k)
	off := bitset.SelectZero(x.bits[w], k-int(x.zeroRank[w]))
	return w*bitset.WordBits + off
}

// zeroWord returns the word holding the k-th zero. Every node contributes one
// 0 and at least one 1 precedes each 0, so the k-th zero sits at or after bit
// 2k; the scan starts there and rarely moves more than a few words.
func (x *Index) zeroWord(k int) int {
	n := len(x.bits)
	w := min(2*k/bitset.WordBits, n-1)
	if int(x.zeroRank[w]) > k {
		return sort.Search(w, func(i int) bool { return int(x.zeroRank[i+1]) > k })
	}
	for i := 0; i < 8; i++ {
		if int(x.zeroRank[w+1]) > k {
			return w
		}
		w++
	}
	return w + sort.Search(n-w, func(i int) bool { return int(x.zeroRank[w+i+1]) > k })
}

// nextZero returns the position of the first 0 bit at or after pos, or -1.
func (x *Index) nextZero(pos int) int {
	w := pos / bitset.WordBits
	if w >= len(x.bits) {
		return -1
	}
	word := ^x.bits[w] & (math.MaxUint64 >> (pos % bitset.WordBits))
	for {
		if word != 0 {
			return w*bitset.WordBits + bits.LeadingZeros64(word)
		}
		w++
		if w >= len(x.bits) {
			return -1
		}
		word = ^x.bits[w]
	}
}
