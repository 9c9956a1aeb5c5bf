package lattice

import (
	"fmt"

	"github.com/hupe1980/kanakanji/model"
)

// Node is one occurrence of a dictionary entry in the lattice.
type Node struct {
	Entry model.Entry
	Range Range
	// Prevs holds the best incoming paths.
	Prevs BestList
	// Gen is the lookup generation that created the node.
	Gen uint32

	// values[i] is the score of Prevs[i] extended by this node, valid during
	// one propagation pass.
	values []float32
}

// NewNode creates a node accepting up to n incoming paths.
func NewNode(e model.Entry, r Range, n int) *Node {
	return &Node{Entry: e, Range: r, Prevs: NewBestList(n)}
}

// ResetPass clears the per-pass state. With paths set the incoming paths are
// dropped too.
func (n *Node) ResetPass(nbest int, paths bool) {
	n.values = n.values[:0]
	if paths {
		n.Prevs.Reset(nbest)
	}
}

// Values returns the per-path scores computed in the current pass.
func (n *Node) Values() []float32 {
	return n.values
}

// SetValues replaces the per-path scores.
func (n *Node) SetValues(v []float32) {
	n.values = v
}

// ValuesBuffer returns the value buffer emptied for reuse.
func (n *Node) ValuesBuffer() []float32 {
	return n.values[:0]
}

// IsHead reports whether the node starts the text.
func (n *Node) IsHead() bool {
	return n.Range.Start().Pos() == 0
}

func (n *Node) String() string {
	return fmt.Sprintf("%s@%s", n.Entry.Word, n.Range)
}
