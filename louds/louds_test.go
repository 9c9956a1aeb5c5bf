package louds

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hiraganaTable(t testing.TB) *CharTable {
	t.Helper()
	var chars []rune
	for c := 'ぁ'; c <= 'ゖ'; c++ {
		chars = append(chars, c)
	}
	chars = append(chars, 'ー')
	table, err := NewCharTable(chars)
	require.NoError(t, err)
	return table
}

func buildIndex(t testing.TB, table *CharTable, readings ...string) (*Index, map[string]int) {
	t.Helper()
	b := NewBuilder(table)
	for _, r := range readings {
		require.NoError(t, b.Add(r))
	}
	return b.Build()
}

func encode(t testing.TB, table *CharTable, s string) []byte {
	t.Helper()
	ids, ok := table.Encode(s)
	require.True(t, ok, "encode %q", s)
	return ids
}

func TestIndex_SearchNodeIndex(t *testing.T) {
	table := hiraganaTable(t)
	x, indices := buildIndex(t, table, "あい", "あ", "か", "かい", "かいしゃ")

	a, ok := x.SearchNodeIndex(encode(t, table, "あ"))
	require.True(t, ok)
	ai, ok := x.SearchNodeIndex(encode(t, table, "あい"))
	require.True(t, ok)
	assert.NotEqual(t, a, ai)
	assert.Equal(t, indices["あ"], a)
	assert.Equal(t, indices["あい"], ai)

	for reading, want := range indices {
		got, ok := x.SearchNodeIndex(encode(t, table, reading))
		require.True(t, ok, reading)
		assert.Equal(t, want, got, reading)
	}

	for _, miss := range []string{"い", "あう", "かいしゃい", "さ"} {
		_, ok := x.SearchNodeIndex(encode(t, table, miss))
		assert.False(t, ok, miss)
	}

	root, ok := x.SearchNodeIndex(nil)
	assert.True(t, ok)
	assert.Equal(t, Root, root)
}

func TestIndex_ChildNodeIndices(t *testing.T) {
	table := hiraganaTable(t)
	x, indices := buildIndex(t, table, "あ", "あい", "か", "かい")

	// Level order: root, あ, か, あい, かい.
	assert.Equal(t, 5, x.NodeCount())
	start, end := x.ChildNodeIndices(Root)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)

	start, end = x.ChildNodeIndices(indices["あ"])
	assert.Equal(t, 1, end-start)
	assert.Equal(t, indices["あい"], start)

	start, end = x.ChildNodeIndices(indices["あい"])
	assert.Equal(t, start, end)

	start, end = x.ChildNodeIndices(-1)
	assert.Equal(t, start, end)
	start, end = x.ChildNodeIndices(x.NodeCount())
	assert.Equal(t, start, end)
}

func TestIndex_PrefixNodeIndices(t *testing.T) {
	table := hiraganaTable(t)
	x, indices := buildIndex(t, table, "か", "かい", "かいしゃ", "かき", "かきごおり")

	got := x.PrefixNodeIndices(encode(t, table, "か"), 1, 10)
	assert.Equal(t, []int{indices["か"], indices["かい"], indices["かき"]}, got)

	got = x.PrefixNodeIndices(encode(t, table, "か"), 3, 100)
	assert.Contains(t, got, indices["かいしゃ"])
	assert.NotContains(t, got, indices["かきごおり"])

	got = x.PrefixNodeIndices(encode(t, table, "か"), 10, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, indices["か"], got[0])

	assert.Empty(t, x.PrefixNodeIndices(encode(t, table, "さ"), 3, 10))
	assert.Empty(t, x.PrefixNodeIndices(encode(t, table, "か"), 3, 0))
}

func TestIndex_RandomRoundTrip(t *testing.T) {
	table := hiraganaTable(t)
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("あいうえおかきくけこさしすせそたちつてとなにぬねの")

	seen := make(map[string]bool)
	var readings []string
	for len(readings) < 3000 {
		n := 1 + rng.Intn(6)
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		if !seen[sb.String()] {
			seen[sb.String()] = true
			readings = append(readings, sb.String())
		}
	}

	x, indices := buildIndex(t, table, readings...)
	distinct := make(map[int]string)
	for _, r := range readings {
		node, ok := x.SearchNodeIndex(encode(t, table, r))
		require.True(t, ok, r)
		require.Equal(t, indices[r], node)
		prev, dup := distinct[node]
		require.False(t, dup, "%q and %q share node %d", r, prev, node)
		distinct[node] = r
	}

	// Children are sorted by char and point back to their parent.
	for node := 0; node < x.NodeCount(); node++ {
		start, end := x.ChildNodeIndices(node)
		for c := start; c < end; c++ {
			if c > start {
				require.Less(t, x.Char(c-1), x.Char(c))
			}
			found, ok := x.SearchCharNodeIndex(node, x.Char(c))
			require.True(t, ok)
			require.Equal(t, c, found)
		}
	}

	// Keys built from characters outside the inserted alphabet never resolve.
	_, ok := x.SearchNodeIndex(encode(t, table, "ぱぴ"))
	assert.False(t, ok)
}

func TestCursor_Sync(t *testing.T) {
	table := hiraganaTable(t)
	x, indices := buildIndex(t, table, "か", "かい", "かいしゃ", "かき")
	c := x.NewCursor()

	nodes := c.Sync(encode(t, table, "か"))
	assert.Equal(t, []int{indices["か"]}, nodes)

	nodes = c.Sync(encode(t, table, "かい"))
	assert.Equal(t, []int{indices["か"], indices["かい"]}, nodes)
	node, ok := c.Node()
	assert.True(t, ok)
	assert.Equal(t, indices["かい"], node)

	nodes = c.Sync(encode(t, table, "かいし"))
	assert.Len(t, nodes, 3)

	// Divergence at position 1 discards everything from there on.
	nodes = c.Sync(encode(t, table, "かき"))
	assert.Equal(t, []int{indices["か"], indices["かき"]}, nodes)

	// Unknown continuation stops resolution but keeps the resolved prefix.
	nodes = c.Sync(encode(t, table, "かきく"))
	assert.Len(t, nodes, 2)
	_, ok = c.Node()
	assert.False(t, ok)

	c.Reset()
	node, ok = c.Node()
	assert.True(t, ok)
	assert.Equal(t, Root, node)
}

func TestFormat_RoundTrip(t *testing.T) {
	table := hiraganaTable(t)
	x, indices := buildIndex(t, table, "あ", "あい", "か")

	loaded, err := Load(x.MarshalBits(), x.MarshalChars())
	require.NoError(t, err)
	for reading, want := range indices {
		got, ok := loaded.SearchNodeIndex(encode(t, table, reading))
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, err = Load(x.MarshalBits()[:5], x.MarshalChars())
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Load(x.MarshalBits(), x.MarshalChars()[:2])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCharTable(t *testing.T) {
	table, err := ReadCharTable(strings.NewReader("あ\nい\n\nう\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	id, ok := table.ID('い')
	assert.True(t, ok)
	assert.Equal(t, byte(2), id)

	ids, ok := table.Encode("うあ")
	assert.True(t, ok)
	assert.Equal(t, []byte{3, 1}, ids)
	assert.Equal(t, "うあ", table.Decode(ids))

	_, ok = table.Encode("え")
	assert.False(t, ok)

	var buf bytes.Buffer
	_, err = table.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "あ\nい\nう\n", buf.String())

	_, err = NewCharTable([]rune("ああ"))
	assert.ErrorIs(t, err, ErrDuplicateChar)

	b := NewBuilder(table)
	assert.ErrorIs(t, b.Add("か"), ErrUnknownChar)
}

func BenchmarkIndex_SearchNodeIndex(b *testing.B) {
	table := hiraganaTable(b)
	rng := rand.New(rand.NewSource(1))
	alphabet := []rune("あいうえおかきくけこさしすせそ")
	builder := NewBuilder(table)
	var keys [][]byte
	for i := 0; i < 20000; i++ {
		var sb strings.Builder
		n := 1 + rng.Intn(7)
		for j := 0; j < n; j++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		_ = builder.Add(sb.String())
		ids, _ := table.Encode(sb.String())
		keys = append(keys, ids)
	}
	x, _ := builder.Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.SearchNodeIndex(keys[i%len(keys)])
	}
}
