package lattice

import (
	"fmt"

	"github.com/hupe1980/kanakanji/model"
)

// Coordinate is the coordinate system of an Index.
type Coordinate uint8

const (
	// InputCoordinate counts raw input characters.
	InputCoordinate Coordinate = iota
	// SurfaceCoordinate counts resolved surface characters.
	SurfaceCoordinate
)

func (c Coordinate) String() string {
	if c == InputCoordinate {
		return "input"
	}
	return "surface"
}

// Index is a position tagged with its coordinate system.
type Index struct {
	coord Coordinate
	pos   int
}

// Input returns the input position i.
func Input(i int) Index { return Index{coord: InputCoordinate, pos: i} }

// Surface returns the surface position i.
func Surface(i int) Index { return Index{coord: SurfaceCoordinate, pos: i} }

// Coordinate returns the coordinate system of x.
func (x Index) Coordinate() Coordinate { return x.coord }

// Pos returns the position.
func (x Index) Pos() int { return x.pos }

// IsInput reports whether x is an input position.
func (x Index) IsInput() bool { return x.coord == InputCoordinate }

// IsSurface reports whether x is a surface position.
func (x Index) IsSurface() bool { return x.coord == SurfaceCoordinate }

// Add returns x moved by n in its own coordinate system.
func (x Index) Add(n int) Index { return Index{coord: x.coord, pos: x.pos + n} }

func (x Index) String() string {
	return fmt.Sprintf("%s(%d)", x.coord, x.pos)
}

// Range is a half-open interval in one coordinate system.
type Range struct {
	start Index
	end   Index
}

// NewRange creates [start, end). It panics if the endpoints use different
// coordinate systems or end precedes start.
func NewRange(start, end Index) Range {
	if start.coord != end.coord {
		panic(fmt.Sprintf("lattice: mixed range %v..%v", start, end))
	}
	if end.pos < start.pos {
		panic(fmt.Sprintf("lattice: inverted range %v..%v", start, end))
	}
	return Range{start: start, end: end}
}

// InputRange returns the input range [start, end).
func InputRange(start, end int) Range { return NewRange(Input(start), Input(end)) }

// SurfaceRange returns the surface range [start, end).
func SurfaceRange(start, end int) Range { return NewRange(Surface(start), Surface(end)) }

// Start returns the first position of r.
func (r Range) Start() Index { return r.start }

// End returns the position after r.
func (r Range) End() Index { return r.end }

// Coordinate returns the coordinate system of r.
func (r Range) Coordinate() Coordinate { return r.start.coord }

// Len returns the number of positions covered.
func (r Range) Len() int { return r.end.pos - r.start.pos }

// Shift moves r by -offset, the offset of its coordinate system.
func (r Range) Shift(inputOffset, surfaceOffset int) Range {
	off := inputOffset
	if r.start.coord == SurfaceCoordinate {
		off = surfaceOffset
	}
	return NewRange(r.start.Add(-off), r.end.Add(-off))
}

func (r Range) String() string {
	return fmt.Sprintf("%s[%d,%d)", r.start.coord, r.start.pos, r.end.pos)
}

// SearchRange selects the words that start at Start and end anywhere in
// [MinEnd, MaxEnd].
type SearchRange struct {
	Start  int
	MinEnd int
	MaxEnd int
}

// Empty reports whether no end position qualifies.
func (r *SearchRange) Empty() bool {
	return r == nil || r.MinEnd > r.MaxEnd || r.MaxEnd <= r.Start
}

// Match is one dictionary hit for a range of the composing text.
type Match struct {
	Entry model.Entry
	Range Range
}

// Alignment is the view of the composing text the dual-index map needs.
type Alignment interface {
	InputCount() int
	SurfaceCount() int
	// SurfaceIndex returns the surface position that input position i starts,
	// if the boundary before input i is also a surface boundary. The input
	// count maps to the surface count.
	SurfaceIndex(i int) (int, bool)
}

// Text is the view of the composing text dictionary lookups need.
type Text interface {
	Alignment
	// Reading returns the kana reading of r.
	Reading(r Range) string
}

// SearchRanges expands the search ranges into the ranges to look up, input
// ranges first, each by ascending end. A surface range whose ends align with
// a searched input range reads the same and is left out.
func SearchRanges(a Alignment, input, surface *SearchRange) []Range {
	var out []Range
	var skip map[[2]int]struct{}
	if !input.Empty() {
		ss, startAligned := a.SurfaceIndex(input.Start)
		for e := max(input.MinEnd, input.Start+1); e <= input.MaxEnd; e++ {
			out = append(out, InputRange(input.Start, e))
			if !startAligned || surface.Empty() {
				continue
			}
			if se, ok := a.SurfaceIndex(e); ok {
				if skip == nil {
					skip = make(map[[2]int]struct{})
				}
				skip[[2]int{ss, se}] = struct{}{}
			}
		}
	}
	if !surface.Empty() {
		for e := max(surface.MinEnd, surface.Start+1); e <= surface.MaxEnd; e++ {
			if _, dup := skip[[2]int{surface.Start, e}]; dup {
				continue
			}
			out = append(out, SurfaceRange(surface.Start, e))
		}
	}
	return out
}
