package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/kanakanji/composing"
)

// RNG wraps a seeded random source. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Zipf returns a Zipfian-distributed value in [0, n): P(k) ∝ 1/k^s.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Kana returns a character of Alphabet, frequent ones first.
func (r *RNG) Kana() string {
	return Alphabet[r.Zipf(len(Alphabet), 1.1)]
}

// Romaji are segments whose input differs from their surface, mixed into
// generated edits.
var Romaji = []composing.Segment{
	{Input: "sha", Surface: "しゃ"},
	{Input: "ki", Surface: "き"},
	{Input: "-", Surface: "かい"},
}

// Segment returns a kana segment, or one of Romaji every fifth draw on
// average.
func (r *RNG) Segment() composing.Segment {
	if r.Intn(5) == 0 {
		return Romaji[r.Intn(len(Romaji))]
	}
	return composing.Kana(r.Kana())
}

// EditKind is the kind of a composing edit.
type EditKind uint8

const (
	AppendEdit EditKind = iota
	DeleteEdit
	ReplaceEdit
	InsertEdit
)

// Edit is one change to a composing text.
type Edit struct {
	Kind EditKind
	Seg  composing.Segment
	// Pos is the segment an InsertEdit goes before.
	Pos int
}

// Apply performs the edit.
func (e Edit) Apply(t *composing.Text) {
	switch e.Kind {
	case AppendEdit:
		t.Append(e.Seg)
	case DeleteEdit:
		t.DeleteLast(1)
	case ReplaceEdit:
		t.ReplaceLast(e.Seg)
	case InsertEdit:
		t.Insert(e.Pos, e.Seg)
	}
}

// Edits returns n edits that keep a text between zero and maxLen segments,
// starting from an empty text. Appends dominate, as in typing.
func (r *RNG) Edits(n, maxLen int) []Edit {
	edits := make([]Edit, 0, n)
	length := 0
	for len(edits) < n {
		e := Edit{Seg: r.Segment()}
		op := r.Intn(10)
		switch {
		case length == 0 || (op < 5 && length < maxLen):
			e.Kind = AppendEdit
			length++
		case op < 7:
			e.Kind = DeleteEdit
			length--
		case op < 9:
			e.Kind = ReplaceEdit
		default:
			if length >= maxLen {
				e.Kind = ReplaceEdit
				break
			}
			e.Kind = InsertEdit
			e.Pos = r.Intn(length)
			length++
		}
		edits = append(edits, e)
	}
	return edits
}
