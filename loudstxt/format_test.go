package loudstxt

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/hupe1980/kanakanji/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(reading, word string, lcid, rcid, mid uint16, score float32) model.Entry {
	return model.Entry{
		Word:    word,
		Reading: reading,
		LCID:    model.ClassID(lcid),
		RCID:    model.ClassID(rcid),
		MID:     model.SemanticID(mid),
		Score:   score,
		Flags:   model.FromDictionary,
	}
}

func TestLocate(t *testing.T) {
	shard, slot := Locate(5000, DefaultShardShift)
	assert.Equal(t, 2, shard)
	assert.Equal(t, 5000-2*2048, slot)

	shard, slot = Locate(7, 2)
	assert.Equal(t, 1, shard)
	assert.Equal(t, 3, slot)
}

func TestEncodeSlot_Layout(t *testing.T) {
	p := EncodeSlot(nil, []model.Entry{
		entry("あい", "愛", 1, 2, 3, -10),
		entry("あい", "あい", 4, 5, 6, -20),
	})
	require.Len(t, p, 2+2*RowSize+len("あい\t愛\t"))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(p))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(p[2:]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(p[2+RowSize:]))
	assert.Equal(t, "あい\t愛\t", string(p[2+2*RowSize:]))

	assert.Equal(t, []byte{0, 0}, EncodeSlot(nil, nil))
}

func TestShard_RoundTrip(t *testing.T) {
	slots := make([][]model.Entry, 8)
	slots[1] = []model.Entry{entry("あ", "亜", 10, 11, 12, -30), entry("あ", "阿", 10, 11, 13, -31.5)}
	slots[2] = []model.Entry{entry("あい", "愛", 20, 21, 22, -40), entry("あい", "藍", 20, 21, 23, -45)}
	slots[7] = []model.Entry{entry("か", "か", 30, 30, 501, -50)}

	data, err := Encode(slots)
	require.NoError(t, err)

	s, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, len(slots), s.SlotCount())

	for i, want := range slots {
		t.Run(fmt.Sprintf("slot%d", i), func(t *testing.T) {
			got, err := s.Slot(i)
			require.NoError(t, err)
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}

	_, err = s.Slot(len(slots))
	assert.ErrorIs(t, err, ErrSlotRange)
}

func TestShard_OffsetsAreAbsolute(t *testing.T) {
	data, err := Encode([][]model.Entry{nil, {entry("う", "宇", 1, 1, 1, -1)}})
	require.NoError(t, err)

	header := 2 + 4*2
	assert.Equal(t, uint32(header), binary.LittleEndian.Uint32(data[2:]))
	assert.Equal(t, uint32(header+2), binary.LittleEndian.Uint32(data[6:]))
}

func TestDecode_FailsClosed(t *testing.T) {
	data, err := Encode([][]model.Entry{
		{entry("あ", "亜", 1, 1, 1, -1)},
		{entry("い", "胃", 2, 2, 2, -2), entry("い", "井", 2, 2, 2, -3)},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		slot int
	}{
		{"empty", nil, 0},
		{"truncated header", data[:4], 0},
		{"truncated body", data[:len(data)-4], 1},
		{"out of range", data, 5},
		{"garbage", []byte{0xff, 0xff, 1, 2, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Empty(t, Decode(tt.data, tt.slot))
			})
		})
	}

	// Offsets pointing past the end.
	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[2:], uint32(len(bad)+10))
	s, err := Open(bad)
	require.NoError(t, err)
	_, err = s.Slot(0)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, s.Lookup(0))

	// The untouched slot still decodes.
	assert.Len(t, s.Lookup(1), 2)
}

func TestDecodeSlot_WordCountMismatch(t *testing.T) {
	p := EncodeSlot(nil, []model.Entry{entry("あ", "亜", 1, 1, 1, -1)})
	p = append(p, "\t余分"...)
	_, err := DecodeSlot(p)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func BenchmarkShard_Slot(b *testing.B) {
	slots := make([][]model.Entry, 1<<DefaultShardShift)
	for i := range slots {
		if i%3 != 0 {
			continue
		}
		reading := fmt.Sprintf("よみ%d", i)
		for j := 0; j < 8; j++ {
			slots[i] = append(slots[i], entry(reading, fmt.Sprintf("語%d", j), 1, 2, 3, float32(-j)))
		}
	}
	data, err := Encode(slots)
	require.NoError(b, err)
	s, err := Open(data)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Lookup((i * 3) % len(slots))
	}
}
