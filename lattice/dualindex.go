package lattice

import "fmt"

// DualKind tells which coordinate systems a position exists in.
type DualKind uint8

const (
	// Both is a position that is a boundary in both systems.
	Both DualKind = iota
	// InputOnly is an input position inside an unresolved surface character.
	InputOnly
	// SurfaceOnly is a surface position without an input boundary, as produced
	// by expansions.
	SurfaceOnly
)

func (k DualKind) String() string {
	switch k {
	case Both:
		return "both"
	case InputOnly:
		return "inputOnly"
	default:
		return "surfaceOnly"
	}
}

// DualIndex is a position tagged by the coordinate systems it exists in.
type DualIndex struct {
	kind    DualKind
	input   int
	surface int
}

// BothIndex returns the position that is input i and surface s.
func BothIndex(i, s int) DualIndex { return DualIndex{kind: Both, input: i, surface: s} }

// InputOnlyIndex returns the input-only position i.
func InputOnlyIndex(i int) DualIndex { return DualIndex{kind: InputOnly, input: i, surface: -1} }

// SurfaceOnlyIndex returns the surface-only position s.
func SurfaceOnlyIndex(s int) DualIndex { return DualIndex{kind: SurfaceOnly, input: -1, surface: s} }

// Kind returns the tag.
func (d DualIndex) Kind() DualKind { return d.kind }

// Input returns the input position, if any.
func (d DualIndex) Input() (int, bool) { return d.input, d.kind != SurfaceOnly }

// Surface returns the surface position, if any.
func (d DualIndex) Surface() (int, bool) { return d.surface, d.kind != InputOnly }

func (d DualIndex) String() string {
	switch d.kind {
	case Both:
		return fmt.Sprintf("both(%d,%d)", d.input, d.surface)
	case InputOnly:
		return fmt.Sprintf("inputOnly(%d)", d.input)
	default:
		return fmt.Sprintf("surfaceOnly(%d)", d.surface)
	}
}

// DualIndexMap reconciles input and surface positions for one state of the
// composing text. It must be rebuilt whenever the text changes.
type DualIndexMap struct {
	inputCount   int
	surfaceCount int
	indices      []DualIndex
	byInput      []int // position in indices, -1 if unmapped
	bySurface    []int
}

// NewDualIndexMap builds the map for a.
func NewDualIndexMap(a Alignment) *DualIndexMap {
	ni, ns := a.InputCount(), a.SurfaceCount()
	m := &DualIndexMap{
		inputCount:   ni,
		surfaceCount: ns,
		indices:      make([]DualIndex, 0, max(ni, ns)),
		byInput:      make([]int, ni),
		bySurface:    make([]int, ns),
	}
	for i := range m.bySurface {
		m.bySurface[i] = -1
	}

	covered := make([]bool, ns)
	next := 0 // first surface position not yet emitted
	emitSurfaceOnly := func(limit int) {
		for ; next < limit; next++ {
			if !covered[next] {
				m.bySurface[next] = len(m.indices)
				m.indices = append(m.indices, SurfaceOnlyIndex(next))
			}
		}
	}
	last := -1
	for i := 0; i < ni; i++ {
		s, ok := a.SurfaceIndex(i)
		if ok && s > last && s < ns {
			emitSurfaceOnly(s)
			covered[s] = true
			last = s
			next = s + 1
			m.byInput[i] = len(m.indices)
			m.bySurface[s] = len(m.indices)
			m.indices = append(m.indices, BothIndex(i, s))
			continue
		}
		m.byInput[i] = len(m.indices)
		m.indices = append(m.indices, InputOnlyIndex(i))
	}
	emitSurfaceOnly(ns)
	return m
}

// InputCount returns the input length the map was built for.
func (m *DualIndexMap) InputCount() int { return m.inputCount }

// SurfaceCount returns the surface length the map was built for.
func (m *DualIndexMap) SurfaceCount() int { return m.surfaceCount }

// Indices returns every start position in processing order. Both input and
// surface positions ascend along the sequence. The slice must not be
// modified.
func (m *DualIndexMap) Indices() []DualIndex {
	return m.indices
}

// End returns the end position of the text.
func (m *DualIndexMap) End() DualIndex {
	return BothIndex(m.inputCount, m.surfaceCount)
}

// DualIndexFor projects x into the map. The end of the text maps to End. It
// panics for positions outside the text, which means the map is stale.
func (m *DualIndexMap) DualIndexFor(x Index) DualIndex {
	switch x.coord {
	case InputCoordinate:
		if x.pos == m.inputCount {
			return m.End()
		}
		if x.pos < 0 || x.pos > m.inputCount {
			panic(fmt.Sprintf("lattice: %v outside input of length %d", x, m.inputCount))
		}
		return m.indices[m.byInput[x.pos]]
	default:
		if x.pos == m.surfaceCount {
			return m.End()
		}
		if x.pos < 0 || x.pos > m.surfaceCount {
			panic(fmt.Sprintf("lattice: %v outside surface of length %d", x, m.surfaceCount))
		}
		return m.indices[m.bySurface[x.pos]]
	}
}

// Matches reports whether the map was built for a text with a's lengths and
// alignment.
func (m *DualIndexMap) Matches(a Alignment) bool {
	if a.InputCount() != m.inputCount || a.SurfaceCount() != m.surfaceCount {
		return false
	}
	for i := 0; i < m.inputCount; i++ {
		d := m.indices[m.byInput[i]]
		s, ok := a.SurfaceIndex(i)
		if (d.kind == Both) != (ok && s == d.surface) {
			return false
		}
	}
	return true
}

// Suffix returns the map of the text after the Both position (input,
// surface), rebased to start at zero.
func (m *DualIndexMap) Suffix(input, surface int) *DualIndexMap {
	if d := m.DualIndexFor(Input(input)); d != BothIndex(input, surface) {
		panic(fmt.Sprintf("lattice: suffix at %v, which is not both(%d,%d)", d, input, surface))
	}
	return NewDualIndexMap(shiftedAlignment{m: m, input: input, surface: surface})
}

type shiftedAlignment struct {
	m              *DualIndexMap
	input, surface int
}

func (a shiftedAlignment) InputCount() int   { return a.m.inputCount - a.input }
func (a shiftedAlignment) SurfaceCount() int { return a.m.surfaceCount - a.surface }
func (a shiftedAlignment) SurfaceIndex(i int) (int, bool) {
	s, ok := a.m.DualIndexFor(Input(i + a.input)).Surface()
	if !ok {
		return 0, false
	}
	return s - a.surface, true
}

// StablePrefix returns the last Both position (input, surface) up to which a
// and b classify every position identically, limited to maxInput and
// maxSurface. Nodes ending at or before it mean the same in both texts.
func StablePrefix(a, b *DualIndexMap, maxInput, maxSurface int) (input, surface int) {
	within := func(d DualIndex) bool {
		return d.kind == Both && d.input <= maxInput && d.surface <= maxSurface
	}
	k := 0
	for ; k < len(a.indices) && k < len(b.indices); k++ {
		d := a.indices[k]
		if d != b.indices[k] {
			break
		}
		if d.kind == Both {
			if !within(d) {
				return input, surface
			}
			input, surface = d.input, d.surface
		}
	}
	// The first position past the shared run may be the end of either text.
	na, nb := a.End(), b.End()
	if k < len(a.indices) {
		na = a.indices[k]
	}
	if k < len(b.indices) {
		nb = b.indices[k]
	}
	if na == nb && within(na) {
		return na.input, na.surface
	}
	return input, surface
}
