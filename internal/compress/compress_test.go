package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	compressible := bytes.Repeat([]byte("かいしゃ\t会社\t"), 500)
	random := make([]byte, 4096)
	rand.New(rand.NewSource(7)).Read(random)

	for _, typ := range []Type{None, LZ4, ZSTD} {
		for name, data := range map[string][]byte{"compressible": compressible, "random": random, "empty": {}} {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				enc, err := Encode(data, typ)
				require.NoError(t, err)
				dec, err := Decode(enc, typ)
				require.NoError(t, err)
				assert.Equal(t, data, dec)
			})
		}
	}
}

func TestEncode_Shrinks(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)
	for _, typ := range []Type{LZ4, ZSTD} {
		enc, err := Encode(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(enc), len(data)/2, typ.String())
	}
}

func TestDecode_Corrupt(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 1024)
	enc, err := Encode(data, ZSTD)
	require.NoError(t, err)

	_, err = Decode(enc[:4], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Decode(enc[:len(enc)-1], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)

	garbled := append([]byte(nil), enc...)
	for i := headerSize; i < len(garbled); i++ {
		garbled[i] ^= 0x5a
	}
	_, err = Decode(garbled, ZSTD)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Type{"": None, "none": None, "LZ4": LZ4, "zstd": ZSTD} {
		got, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := Parse("brotli")
	assert.ErrorIs(t, err, ErrUnknownType)

	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("lz4")))
	assert.Equal(t, LZ4, typ)
}
