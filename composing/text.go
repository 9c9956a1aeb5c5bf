package composing

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/kanakanji/lattice"
)

// ErrNotBoundary is returned when an edit position splits a segment.
var ErrNotBoundary = errors.New("composing: position is not a segment boundary")

// Segment is a run of input characters and the surface characters they
// resolved to.
type Segment struct {
	Input   string
	Surface string
}

// Kana returns a segment whose input and surface are s.
func Kana(s string) Segment {
	return Segment{Input: s, Surface: s}
}

// Text is a composing text. The zero value is empty and ready to use.
type Text struct {
	segs []Segment

	// Prefix sums of rune counts: inputAt[k] is where segment k starts.
	inputAt   []int
	surfaceAt []int
	input     []rune
	surface   []rune
}

// New creates a Text from segments. Segments with empty input are dropped.
func New(segs ...Segment) *Text {
	t := &Text{}
	t.segs = make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Input != "" {
			t.segs = append(t.segs, s)
		}
	}
	t.index()
	return t
}

// FromKana creates a Text with one segment per character of s.
func FromKana(s string) *Text {
	segs := make([]Segment, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		segs = append(segs, Kana(string(r)))
	}
	return New(segs...)
}

func (t *Text) index() {
	t.inputAt = t.inputAt[:0]
	t.surfaceAt = t.surfaceAt[:0]
	t.input = t.input[:0]
	t.surface = t.surface[:0]
	for _, s := range t.segs {
		t.inputAt = append(t.inputAt, len(t.input))
		t.surfaceAt = append(t.surfaceAt, len(t.surface))
		t.input = append(t.input, []rune(s.Input)...)
		t.surface = append(t.surface, []rune(s.Surface)...)
	}
}

// Segments returns the segments. The slice must not be modified.
func (t *Text) Segments() []Segment { return t.segs }

// InputCount returns the number of input characters.
func (t *Text) InputCount() int { return len(t.input) }

// SurfaceCount returns the number of surface characters.
func (t *Text) SurfaceCount() int { return len(t.surface) }

// InputText returns the input characters.
func (t *Text) InputText() string { return string(t.input) }

// SurfaceText returns the surface characters.
func (t *Text) SurfaceText() string { return string(t.surface) }

// SurfaceIndex returns the surface position of the segment starting at
// input position i.
func (t *Text) SurfaceIndex(i int) (int, bool) {
	if i == len(t.input) {
		return len(t.surface), true
	}
	k, ok := t.segmentAt(i)
	if !ok {
		return 0, false
	}
	return t.surfaceAt[k], true
}

// segmentAt returns the segment starting at input position i.
func (t *Text) segmentAt(i int) (int, bool) {
	lo, hi := 0, len(t.inputAt)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.inputAt[mid] < i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(t.inputAt) && t.inputAt[lo] == i
}

// Reading returns the reading of r. Surface ranges read the surface
// characters. Input ranges read the surface of every segment they cover
// whole and the raw input of segments they cover in part.
func (t *Text) Reading(r lattice.Range) string {
	start, end := r.Start().Pos(), r.End().Pos()
	if r.Coordinate() == lattice.SurfaceCoordinate {
		if start < 0 || end > len(t.surface) {
			panic(fmt.Sprintf("composing: %v outside surface of length %d", r, len(t.surface)))
		}
		return string(t.surface[start:end])
	}
	if start < 0 || end > len(t.input) {
		panic(fmt.Sprintf("composing: %v outside input of length %d", r, len(t.input)))
	}
	var sb strings.Builder
	for k, s := range t.segs {
		segStart := t.inputAt[k]
		segEnd := segStart + utf8.RuneCountInString(s.Input)
		if segEnd <= start {
			continue
		}
		if segStart >= end {
			break
		}
		if segStart >= start && segEnd <= end {
			sb.WriteString(s.Surface)
			continue
		}
		sb.WriteString(string(t.input[max(segStart, start):min(segEnd, end)]))
	}
	return sb.String()
}

// Clone returns an independent copy.
func (t *Text) Clone() *Text {
	return New(t.segs...)
}

// Append adds segments at the end.
func (t *Text) Append(segs ...Segment) {
	for _, s := range segs {
		if s.Input != "" {
			t.segs = append(t.segs, s)
		}
	}
	t.index()
}

// AppendKana adds one segment per character of s.
func (t *Text) AppendKana(s string) {
	for _, r := range s {
		t.segs = append(t.segs, Kana(string(r)))
	}
	t.index()
}

// DeleteLast removes the last n segments.
func (t *Text) DeleteLast(n int) {
	n = min(max(n, 0), len(t.segs))
	t.segs = t.segs[:len(t.segs)-n]
	t.index()
}

// ReplaceLast replaces the last segment with segs.
func (t *Text) ReplaceLast(segs ...Segment) {
	t.DeleteLast(1)
	t.Append(segs...)
}

// Insert inserts a segment before segment k.
func (t *Text) Insert(k int, s Segment) {
	k = min(max(k, 0), len(t.segs))
	if s.Input == "" {
		return
	}
	t.segs = append(t.segs, Segment{})
	copy(t.segs[k+1:], t.segs[k:])
	t.segs[k] = s
	t.index()
}

// DropPrefix removes the first input characters, which must end on a
// segment boundary. It is used after committing a prefix.
func (t *Text) DropPrefix(input int) error {
	if input == len(t.input) {
		t.segs = t.segs[:0]
		t.index()
		return nil
	}
	k, ok := t.segmentAt(input)
	if !ok {
		return fmt.Errorf("%w: input %d", ErrNotBoundary, input)
	}
	t.segs = append(t.segs[:0], t.segs[k:]...)
	t.index()
	return nil
}
