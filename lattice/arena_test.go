package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanakanji/model"
)

func TestPathArena_BackReferencesPointBackwards(t *testing.T) {
	a := NewPathArena(0)
	root := a.Add(PathRecord{Entry: model.BOS(), Prev: NoPath})
	r1 := a.Add(PathRecord{Entry: model.Entry{Word: "愛"}, Prev: root, Total: -1})
	r2 := a.Add(PathRecord{Entry: model.Entry{Word: "を"}, Prev: r1, Total: -2})
	assert.Equal(t, 3, a.Len())

	for i := 0; i < a.Len(); i++ {
		rec := a.Get(PathRef(i))
		assert.Less(t, int(rec.Prev), i)
	}

	chain := a.Chain(r2)
	require.Len(t, chain, 3)
	assert.Equal(t, "愛", chain[1].Entry.Word)
	assert.Equal(t, "を", chain[2].Entry.Word)

	assert.Panics(t, func() { a.Add(PathRecord{Prev: 10}) })
}

func TestPathArena_Compact(t *testing.T) {
	a := NewPathArena(0)
	root := a.Add(PathRecord{Prev: NoPath})
	dead := a.Add(PathRecord{Prev: root, Entry: model.Entry{Word: "dead"}})
	_ = a.Add(PathRecord{Prev: dead, Entry: model.Entry{Word: "dead2"}})
	keep := a.Add(PathRecord{Prev: root, Entry: model.Entry{Word: "keep"}})
	tip := a.Add(PathRecord{Prev: keep, Entry: model.Entry{Word: "tip"}})

	l := NewBestList(2)
	l.Insert(Scored{Ref: tip, Score: -1})
	l.Insert(Scored{Ref: keep, Score: -2})

	a.Compact(l.PathRefs(nil))
	assert.Equal(t, 3, a.Len())

	chain := a.Chain(l.At(0).Ref)
	require.Len(t, chain, 3)
	assert.Equal(t, "keep", chain[1].Entry.Word)
	assert.Equal(t, "tip", chain[2].Entry.Word)
	assert.Equal(t, "keep", a.Get(l.At(1).Ref).Entry.Word)
	for i := 0; i < a.Len(); i++ {
		assert.Less(t, int(a.Get(PathRef(i)).Prev), i)
	}
}

func TestPathArena_Reset(t *testing.T) {
	a := NewPathArena(4)
	a.Add(PathRecord{Prev: NoPath})
	a.Reset()
	assert.Equal(t, 0, a.Len())
}
