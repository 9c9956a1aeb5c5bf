package lattice

import "fmt"

// Lattice stores nodes in buckets by start position, one bucket array per
// coordinate system. Within a bucket nodes are ordered by end position and
// otherwise keep insertion order.
type Lattice struct {
	input   [][]*Node
	surface [][]*Node
}

// New creates an empty lattice for a text of the given lengths.
func New(inputCount, surfaceCount int) *Lattice {
	return &Lattice{
		input:   make([][]*Node, inputCount),
		surface: make([][]*Node, surfaceCount),
	}
}

// InputCount returns the number of input buckets.
func (l *Lattice) InputCount() int { return len(l.input) }

// SurfaceCount returns the number of surface buckets.
func (l *Lattice) SurfaceCount() int { return len(l.surface) }

func (l *Lattice) buckets(c Coordinate) [][]*Node {
	if c == InputCoordinate {
		return l.input
	}
	return l.surface
}

// Add records n in the bucket of its start position.
func (l *Lattice) Add(n *Node) {
	start := n.Range.Start()
	buckets := l.buckets(start.Coordinate())
	if start.Pos() < 0 || start.Pos() >= len(buckets) {
		panic(fmt.Sprintf("lattice: node %v outside lattice of %d %s buckets", n, len(buckets), start.Coordinate()))
	}
	b := append(buckets[start.Pos()], n)
	end := n.Range.End().Pos()
	i := len(b) - 1
	for i > 0 && b[i-1].Range.End().Pos() > end {
		b[i] = b[i-1]
		i--
	}
	b[i] = n
	buckets[start.Pos()] = b
}

// Nodes returns the nodes starting at x.
func (l *Lattice) Nodes(x Index) []*Node {
	buckets := l.buckets(x.Coordinate())
	if x.Pos() < 0 || x.Pos() >= len(buckets) {
		return nil
	}
	return buckets[x.Pos()]
}

// NodesAt returns the input-range and surface-range nodes starting at d.
func (l *Lattice) NodesAt(d DualIndex) (input, surface []*Node) {
	if i, ok := d.Input(); ok {
		input = l.Nodes(Input(i))
	}
	if s, ok := d.Surface(); ok {
		surface = l.Nodes(Surface(s))
	}
	return input, surface
}

// Len returns the number of nodes.
func (l *Lattice) Len() int {
	n := 0
	for _, b := range l.input {
		n += len(b)
	}
	for _, b := range l.surface {
		n += len(b)
	}
	return n
}

// Each calls fn for every node in processing order of m.
func (l *Lattice) Each(m *DualIndexMap, fn func(*Node)) {
	for _, d := range m.Indices() {
		in, sur := l.NodesAt(d)
		for _, n := range in {
			fn(n)
		}
		for _, n := range sur {
			fn(n)
		}
	}
}

// Resize sets the bucket counts, dropping buckets past the new lengths.
func (l *Lattice) Resize(inputCount, surfaceCount int) {
	l.input = resize(l.input, inputCount)
	l.surface = resize(l.surface, surfaceCount)
}

func resize(b [][]*Node, n int) [][]*Node {
	if n <= len(b) {
		clear(b[n:])
		return b[:n]
	}
	return append(b, make([][]*Node, n-len(b))...)
}

// Truncate keeps the nodes that end at or before inputEnd or surfaceEnd in
// their coordinate system and shrinks the buckets to those lengths.
func (l *Lattice) Truncate(inputEnd, surfaceEnd int) {
	l.Resize(min(inputEnd, len(l.input)), min(surfaceEnd, len(l.surface)))
	truncate(l.input, inputEnd)
	truncate(l.surface, surfaceEnd)
}

func truncate(buckets [][]*Node, end int) {
	for i, b := range buckets {
		// Buckets are ordered by end.
		k := len(b)
		for k > 0 && b[k-1].Range.End().Pos() > end {
			k--
		}
		clear(b[k:])
		buckets[i] = b[:k]
	}
}

// Prefix returns a lattice sharing the nodes that end at or before inputEnd
// or surfaceEnd.
func (l *Lattice) Prefix(inputEnd, surfaceEnd int) *Lattice {
	p := l.clone()
	p.Truncate(inputEnd, surfaceEnd)
	return p
}

// Suffix returns a lattice of copies of the nodes that start at or after
// inputStart or surfaceStart, with ranges rebased to start at zero. Copies
// have no incoming paths.
func (l *Lattice) Suffix(inputStart, surfaceStart int) *Lattice {
	s := New(max(len(l.input)-inputStart, 0), max(len(l.surface)-surfaceStart, 0))
	for _, buckets := range [][][]*Node{l.input, l.surface} {
		for _, b := range buckets {
			for _, n := range b {
				start := n.Range.Start()
				if start.IsInput() && start.Pos() < inputStart || start.IsSurface() && start.Pos() < surfaceStart {
					continue
				}
				c := NewNode(n.Entry, n.Range.Shift(inputStart, surfaceStart), n.Prevs.Cap())
				c.Gen = n.Gen
				s.Add(c)
			}
		}
	}
	return s
}

// Merge adds the nodes of other, growing the buckets as needed.
func (l *Lattice) Merge(other *Lattice) {
	l.Resize(max(len(l.input), len(other.input)), max(len(l.surface), len(other.surface)))
	for _, b := range other.input {
		for _, n := range b {
			l.Add(n)
		}
	}
	for _, b := range other.surface {
		for _, n := range b {
			l.Add(n)
		}
	}
}

func (l *Lattice) clone() *Lattice {
	c := New(len(l.input), len(l.surface))
	for i, b := range l.input {
		c.input[i] = append([]*Node(nil), b...)
	}
	for i, b := range l.surface {
		c.surface[i] = append([]*Node(nil), b...)
	}
	return c
}

// PathRefs returns pointers to every path handle held by the nodes.
func (l *Lattice) PathRefs(dst []*PathRef) []*PathRef {
	for _, buckets := range [][][]*Node{l.input, l.surface} {
		for _, b := range buckets {
			for _, n := range b {
				dst = n.Prevs.PathRefs(dst)
			}
		}
	}
	return dst
}
