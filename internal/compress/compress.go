package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the compression algorithm.
type Type uint8

const (
	// None stores artifacts as-is, without framing.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast decode).
	LZ4 Type = 1
	// ZSTD uses zstd (better ratio).
	ZSTD Type = 2
)

const headerSize = 8

var (
	// ErrCorrupt is returned for frames that cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt frame")
	// ErrUnknownType is returned for unsupported algorithm names or ids.
	ErrUnknownType = errors.New("compress: unknown type")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress(%d)", uint8(t))
	}
}

// Parse maps a name ("", "none", "lz4", "zstd") to a Type.
func Parse(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode compresses data with t. None returns data unchanged.
func Encode(data []byte, t Type) ([]byte, error) {
	if t == None {
		return data, nil
	}
	if len(data) > math.MaxUint32 {
		return nil, fmt.Errorf("compress: %d bytes exceed the frame limit", len(data))
	}

	var packed []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		packed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}

	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		out := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[headerSize:], data)
		return out, nil
	}
	out := make([]byte, headerSize+len(packed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(packed)))
	copy(out[headerSize:], packed)
	return out, nil
}

// Decode reverses Encode. Raw frames are returned as a subslice of data.
func Decode(data []byte, t Type) ([]byte, error) {
	if t == None {
		return data, nil
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d byte frame", ErrCorrupt, len(data))
	}
	size := uint64(binary.LittleEndian.Uint32(data[0:]))
	packedSize := uint64(binary.LittleEndian.Uint32(data[4:]))
	body := data[headerSize:]

	if packedSize == 0 {
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("%w: raw frame holds %d of %d bytes", ErrCorrupt, len(body), size)
		}
		return body, nil
	}
	if uint64(len(body)) != packedSize {
		return nil, fmt.Errorf("%w: frame holds %d of %d bytes", ErrCorrupt, len(body), packedSize)
	}

	out := make([]byte, size)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: decoded %d of %d bytes", ErrCorrupt, n, size)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint64(len(decoded)) != size {
			return nil, fmt.Errorf("%w: decoded %d of %d bytes", ErrCorrupt, len(decoded), size)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}
