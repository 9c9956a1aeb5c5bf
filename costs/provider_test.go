package costs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/composing"
	"github.com/hupe1980/kanakanji/converter"
	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/model"
	"github.com/hupe1980/kanakanji/testutil"
)

func openFixture(t *testing.T, extra map[string][]model.Entry) *dictionary.Store {
	t.Helper()
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	b, err := dictionary.NewBuilder(blobs, testutil.HiraganaTable(), dictionary.WithShardShift(2))
	require.NoError(t, err)
	for _, e := range testutil.Entries {
		require.NoError(t, b.Add(e))
	}
	for bucket, rows := range extra {
		for _, e := range rows {
			require.NoError(t, b.AddTo(bucket, e))
		}
	}
	m, err := b.Build(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, m))

	s, err := dictionary.Open(ctx, blobs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func matchWords(ms []lattice.Match, r lattice.Range) []string {
	var out []string
	for _, m := range ms {
		if m.Range == r {
			out = append(out, m.Entry.Word)
		}
	}
	return out
}

func TestProvider_Lookup(t *testing.T) {
	p := NewProvider(nil, openFixture(t, nil))
	txt := composing.FromKana("かいしゃ")

	ms := p.LookupDicdata(txt, &lattice.SearchRange{Start: 0, MinEnd: 1, MaxEnd: 4}, nil, false)
	assert.ElementsMatch(t, []string{"蚊", "課", "か"}, matchWords(ms, lattice.InputRange(0, 1)))
	assert.ElementsMatch(t, []string{"会", "貝"}, matchWords(ms, lattice.InputRange(0, 2)))
	assert.Empty(t, matchWords(ms, lattice.InputRange(0, 3)))
	assert.Equal(t, []string{"会社"}, matchWords(ms, lattice.InputRange(0, 4)))

	for _, m := range ms {
		assert.Equal(t, model.FromDictionary, m.Entry.Flags)
		assert.Equal(t, txt.Reading(m.Range), m.Entry.Reading)
	}

	// Same start again, answered through the retained cursor.
	again := p.LookupDicdata(txt, &lattice.SearchRange{Start: 0, MinEnd: 2, MaxEnd: 2}, nil, false)
	assert.ElementsMatch(t, []string{"会", "貝"}, matchWords(again, lattice.InputRange(0, 2)))

	assert.Empty(t, p.LookupDicdata(composing.FromKana("ぬ"), &lattice.SearchRange{Start: 0, MinEnd: 1, MaxEnd: 1}, nil, false))
}

func TestProvider_SurfaceRanges(t *testing.T) {
	p := NewProvider(nil, openFixture(t, nil))
	txt := composing.New(composing.Segment{Input: "ka", Surface: "か"}, composing.Segment{Input: "i", Surface: "い"})

	ms := p.LookupDicdata(txt, nil, &lattice.SearchRange{Start: 0, MinEnd: 1, MaxEnd: 2}, false)
	assert.ElementsMatch(t, []string{"会", "貝"}, matchWords(ms, lattice.SurfaceRange(0, 2)))
}

func TestProvider_ReservedBucketsAndOverlays(t *testing.T) {
	user := model.Entry{Reading: "かい", Word: "カイ", LCID: 1, RCID: 1, Score: -1}
	s := openFixture(t, map[string][]model.Entry{dictionary.UserBucket: {user}})

	mem := NewMemory()
	mem.Learn(model.Entry{Reading: "かい", Word: "貝", LCID: 1, RCID: 1, Score: -3})
	mem.Learn(model.Entry{Reading: "かい", Word: "櫂", LCID: 1, RCID: 1, Score: -7})

	p := NewProvider(nil, s, WithOverlay(mem))
	ms := p.LookupDicdata(composing.FromKana("かい"), &lattice.SearchRange{Start: 0, MinEnd: 2, MaxEnd: 2}, nil, false)
	r := lattice.InputRange(0, 2)
	assert.Equal(t, []string{"会", "貝", "カイ", "櫂"}, matchWords(ms, r))

	flags := map[string]model.OriginFlags{}
	for _, m := range ms {
		flags[m.Entry.Word] = m.Entry.Flags
	}
	assert.Equal(t, model.FromUserDictionary, flags["カイ"])
	// The learned 貝 scores higher than the dictionary row and replaces it.
	assert.Equal(t, model.Learned, flags["貝"])
	assert.Equal(t, model.Learned, flags["櫂"])

	off := NewProvider(nil, s, WithDictionaryOverlays(false))
	ms = off.LookupDicdata(composing.FromKana("かい"), &lattice.SearchRange{Start: 0, MinEnd: 2, MaxEnd: 2}, nil, false)
	assert.Equal(t, []string{"会", "貝"}, matchWords(ms, r))
}

func TestProvider_TypoVariants(t *testing.T) {
	variants := func(reading string) []string {
		if reading == "かぃ" {
			return []string{"かい"}
		}
		return nil
	}
	p := NewProvider(nil, openFixture(t, nil), WithTypoVariants(variants, -4))
	txt := composing.FromKana("かぃ")
	sr := &lattice.SearchRange{Start: 0, MinEnd: 2, MaxEnd: 2}

	assert.Empty(t, p.LookupDicdata(txt, sr, nil, false))

	ms := p.LookupDicdata(txt, sr, nil, true)
	require.Len(t, ms, 2)
	for _, m := range ms {
		assert.Equal(t, "かぃ", m.Entry.Reading)
	}
	assert.Equal(t, float32(-2.5-4), ms[0].Entry.Score)
}

func TestProvider_ShouldBeRemoved(t *testing.T) {
	p := NewProvider(nil, nil, WithBlockedWords("蚊"))
	assert.True(t, p.ShouldBeRemoved(model.Entry{}))
	assert.True(t, p.ShouldBeRemoved(model.Entry{Word: "蚊"}))
	assert.False(t, p.ShouldBeRemoved(model.Entry{Word: "課"}))
}

func TestProvider_Predict(t *testing.T) {
	mem := NewMemory()
	mem.Learn(model.Entry{Reading: "かいと", Word: "海渡"})
	p := NewProvider(nil, openFixture(t, nil), WithOverlay(mem))

	var words []string
	for _, e := range p.Predict("かい", 4, 10) {
		words = append(words, e.Word)
	}
	assert.Subset(t, words, []string{"会", "貝", "会社", "海渡"})
	assert.Len(t, p.Predict("かい", 4, 1), 1)
}

func TestProvider_Converter(t *testing.T) {
	ct := NewClauseTable()
	ct.AddBoundary(-1, 2, false)
	ct.AddNeutral(0)
	tables := &Tables{Clauses: ct}
	p := NewProvider(tables, openFixture(t, nil))

	k := converter.New(p, converter.WithNBest(5))
	txt := &composing.Text{}
	for _, c := range "かいしゃ" {
		txt.AppendKana(string(c))
		k.Convert(txt)
	}
	cands := k.Convert(txt).Candidates()
	require.NotEmpty(t, cands)
	assert.Equal(t, "会社", cands[0].Text)

	fresh := converter.New(NewProvider(tables, openFixture(t, nil)), converter.WithNBest(5))
	assert.InDeltaSlice(t, fresh.Convert(txt).Scores(), k.Convert(txt).Scores(), 1e-4)
}

func TestProvider_AiExample(t *testing.T) {
	p := NewProvider(nil, openFixture(t, nil))
	k := converter.New(p)
	var words []string
	for _, c := range k.Convert(composing.FromKana("あい")).Candidates() {
		words = append(words, c.Text)
	}
	assert.Subset(t, words, []string{"愛", "藍", "亜胃", "阿井"})
}

func BenchmarkProvider_LookupDicdata(b *testing.B) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	_, err := testutil.BuildFixture(ctx, blobs)
	require.NoError(b, err)
	s, err := dictionary.Open(ctx, blobs)
	require.NoError(b, err)
	defer s.Close()

	p := NewProvider(nil, s)
	txt := composing.FromKana("かいしゃかいしゃ")
	sr := &lattice.SearchRange{Start: 0, MinEnd: 1, MaxEnd: 8}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.LookupDicdata(txt, sr, nil, false)
	}
}
