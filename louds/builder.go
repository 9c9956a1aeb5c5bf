package louds

import (
	"fmt"
	"sort"

	"github.com/hupe1980/kanakanji/internal/bitset"
)

type trieNode struct {
	char     byte
	children []*trieNode // sorted by char
	index    int
}

func (n *trieNode) child(c byte, create bool) *trieNode {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].char >= c })
	if i < len(n.children) && n.children[i].char == c {
		return n.children[i]
	}
	if !create {
		return nil
	}
	child := &trieNode{char: c}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	return child
}

// Builder builds a LOUDS Index from reading strings.
type Builder struct {
	table    *CharTable
	root     *trieNode
	readings map[string]*trieNode
}

// NewBuilder creates a Builder using table to map characters to byte ids.
func NewBuilder(table *CharTable) *Builder {
	return &Builder{
		table:    table,
		root:     &trieNode{},
		readings: make(map[string]*trieNode),
	}
}

// Add inserts a reading. Adding the same reading twice is a no-op.
func (b *Builder) Add(reading string) error {
	if _, ok := b.readings[reading]; ok {
		return nil
	}
	ids, ok := b.table.Encode(reading)
	if !ok {
		return fmt.Errorf("%w in reading %q", ErrUnknownChar, reading)
	}
	node := b.root
	for _, c := range ids {
		node = node.child(c, true)
	}
	b.readings[reading] = node
	return nil
}

// Len returns the number of distinct readings added.
func (b *Builder) Len() int {
	return len(b.readings)
}

// Build serializes the trie and returns the Index together with the node
// index of every added reading.
func (b *Builder) Build() (*Index, map[string]int) {
	bv := bitset.NewAppender(2*len(b.readings) + 2)
	chars := []byte{0}

	// Sentinel: root bit and super-root terminator.
	bv.Append(true)
	bv.Append(false)

	queue := []*trieNode{b.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, child := range node.children {
			bv.Append(true)
			child.index = len(chars)
			chars = append(chars, child.char)
			queue = append(queue, child)
		}
		bv.Append(false)
	}
	bv.PadOnes()

	indices := make(map[string]int, len(b.readings))
	for reading, node := range b.readings {
		indices[reading] = node.index
	}
	return New(bv.Words(), chars), indices
}
