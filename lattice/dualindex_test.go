package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// alignment describes a text by the surface position of each aligned input
// boundary.
type alignment struct {
	inputCount   int
	surfaceCount int
	surfaceOf    map[int]int
}

func (a alignment) InputCount() int   { return a.inputCount }
func (a alignment) SurfaceCount() int { return a.surfaceCount }
func (a alignment) SurfaceIndex(i int) (int, bool) {
	if i == a.inputCount {
		return a.surfaceCount, true
	}
	s, ok := a.surfaceOf[i]
	return s, ok
}

func identity(n int) alignment {
	m := make(map[int]int, n)
	for i := 0; i < n; i++ {
		m[i] = i
	}
	return alignment{inputCount: n, surfaceCount: n, surfaceOf: m}
}

func TestDualIndexMap_Identity(t *testing.T) {
	m := NewDualIndexMap(identity(3))
	assert.Equal(t, []DualIndex{BothIndex(0, 0), BothIndex(1, 1), BothIndex(2, 2)}, m.Indices())
	assert.Equal(t, BothIndex(1, 1), m.DualIndexFor(Input(1)))
	assert.Equal(t, BothIndex(2, 2), m.DualIndexFor(Surface(2)))
	assert.Equal(t, BothIndex(3, 3), m.DualIndexFor(Input(3)))
	assert.Equal(t, m.End(), m.DualIndexFor(Surface(3)))
}

func TestDualIndexMap_Romaji(t *testing.T) {
	// "kak" typed: か covers input [0,2), the trailing k is unresolved and
	// shown as one surface character.
	a := alignment{inputCount: 3, surfaceCount: 2, surfaceOf: map[int]int{0: 0, 2: 1}}
	m := NewDualIndexMap(a)
	assert.Equal(t, []DualIndex{BothIndex(0, 0), InputOnlyIndex(1), BothIndex(2, 1)}, m.Indices())
	assert.Equal(t, InputOnlyIndex(1), m.DualIndexFor(Input(1)))
	assert.True(t, m.Matches(a))
	assert.False(t, m.Matches(identity(3)))

	_, ok := InputOnlyIndex(1).Surface()
	assert.False(t, ok)
}

func TestDualIndexMap_SurfaceOnly(t *testing.T) {
	// One input character expands to two surface characters.
	a := alignment{inputCount: 2, surfaceCount: 3, surfaceOf: map[int]int{0: 0, 1: 2}}
	m := NewDualIndexMap(a)
	assert.Equal(t, []DualIndex{BothIndex(0, 0), SurfaceOnlyIndex(1), BothIndex(1, 2)}, m.Indices())
	assert.Equal(t, SurfaceOnlyIndex(1), m.DualIndexFor(Surface(1)))

	i, ok := SurfaceOnlyIndex(1).Input()
	assert.False(t, ok)
	assert.Equal(t, -1, i)
}

func TestDualIndexMap_StalePanics(t *testing.T) {
	m := NewDualIndexMap(identity(2))
	assert.Panics(t, func() { m.DualIndexFor(Input(3)) })
	assert.Panics(t, func() { m.DualIndexFor(Surface(-1)) })
}

func TestStablePrefix(t *testing.T) {
	tests := []struct {
		name        string
		a, b        alignment
		maxI, maxS  int
		wantI, wantS int
	}{
		{"append", identity(2), identity(3), 2, 2, 2, 2},
		{"backspace", identity(3), identity(2), 2, 2, 2, 2},
		{"limited by common prefix", identity(3), identity(3), 1, 1, 1, 1},
		{"empty", identity(0), identity(2), 0, 0, 0, 0},
		{
			"romaji resolves",
			alignment{inputCount: 3, surfaceCount: 2, surfaceOf: map[int]int{0: 0, 2: 1}},
			alignment{inputCount: 4, surfaceCount: 2, surfaceOf: map[int]int{0: 0, 2: 1}},
			3, 1, 2, 1,
		},
		{
			"alignment changed",
			alignment{inputCount: 2, surfaceCount: 2, surfaceOf: map[int]int{0: 0, 1: 1}},
			alignment{inputCount: 2, surfaceCount: 1, surfaceOf: map[int]int{0: 0}},
			2, 1, 0, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, s := StablePrefix(NewDualIndexMap(tt.a), NewDualIndexMap(tt.b), tt.maxI, tt.maxS)
			assert.Equal(t, tt.wantI, i)
			assert.Equal(t, tt.wantS, s)
		})
	}
}

func TestDualIndexMap_Suffix(t *testing.T) {
	a := alignment{inputCount: 5, surfaceCount: 4, surfaceOf: map[int]int{0: 0, 1: 1, 3: 2, 4: 3}}
	m := NewDualIndexMap(a)

	s := m.Suffix(1, 1)
	assert.Equal(t, 4, s.InputCount())
	assert.Equal(t, 3, s.SurfaceCount())
	assert.Equal(t, []DualIndex{BothIndex(0, 0), InputOnlyIndex(1), BothIndex(2, 1), BothIndex(3, 2)}, s.Indices())

	assert.Panics(t, func() { m.Suffix(2, 1) })
}
