package loudstxt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/kanakanji/model"
)

const (
	// Ext is the file extension of a shard.
	Ext = ".loudstxt3"
	// DefaultShardShift gives 2048 slots per shard.
	DefaultShardShift = 11
	// MaxShardShift keeps slotCount representable as uint16.
	MaxShardShift = 15
	// RowSize is the encoded size of one row.
	RowSize = 2 + 2 + 2 + 4
)

var (
	// ErrCorrupt is returned for truncated or inconsistent shard data.
	ErrCorrupt = errors.New("loudstxt: corrupt shard")
	// ErrSlotRange is returned for a slot outside the shard.
	ErrSlotRange = errors.New("loudstxt: slot out of range")
)

// Locate returns the shard and slot holding node.
func Locate(node int, shift uint) (shard, slot int) {
	return node >> shift, node & (1<<shift - 1)
}

// EncodeSlot appends the payload for entries to dst. All entries must share
// one reading; an empty slice produces the placeholder.
func EncodeSlot(dst []byte, entries []model.Entry) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(entries)))
	if len(entries) == 0 {
		return dst
	}
	for _, e := range entries {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(e.LCID))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(e.RCID))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(e.MID))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(e.Score))
	}
	reading := entries[0].Reading
	dst = append(dst, reading...)
	for _, e := range entries {
		dst = append(dst, '\t')
		if e.Word != reading {
			dst = append(dst, e.Word...)
		}
	}
	return dst
}

// Encode builds a shard from per-slot entries. len(slots) is the slot count;
// nil slots become placeholders.
func Encode(slots [][]model.Entry) ([]byte, error) {
	if len(slots) > math.MaxUint16 {
		return nil, fmt.Errorf("loudstxt: %d slots exceed the format limit", len(slots))
	}
	headerSize := 2 + 4*len(slots)
	buf := make([]byte, headerSize, headerSize+2*len(slots))
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(slots)))
	for i, entries := range slots {
		if len(entries) > math.MaxUint16 {
			return nil, fmt.Errorf("loudstxt: slot %d has %d rows", i, len(entries))
		}
		if len(buf) > math.MaxUint32 {
			return nil, fmt.Errorf("loudstxt: shard exceeds 4 GiB")
		}
		binary.LittleEndian.PutUint32(buf[2+4*i:], uint32(len(buf)))
		buf = EncodeSlot(buf, entries)
	}
	return buf, nil
}

// Shard is a read-only view over an encoded shard. The data is not copied,
// so it may be backed by a memory mapping.
type Shard struct {
	data      []byte
	slotCount int
}

// Open validates the shard header.
func Open(data []byte) (*Shard, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d byte header", ErrCorrupt, len(data))
	}
	n := int(binary.LittleEndian.Uint16(data))
	if len(data) < 2+4*n {
		return nil, fmt.Errorf("%w: header declares %d slots in %d bytes", ErrCorrupt, n, len(data))
	}
	return &Shard{data: data, slotCount: n}, nil
}

// SlotCount returns the number of slots in the shard.
func (s *Shard) SlotCount() int {
	return s.slotCount
}

// Size returns the encoded size in bytes.
func (s *Shard) Size() int {
	return len(s.data)
}

func (s *Shard) bounds(slot int) (start, end int) {
	start = int(binary.LittleEndian.Uint32(s.data[2+4*slot:]))
	end = len(s.data)
	if slot+1 < s.slotCount {
		end = int(binary.LittleEndian.Uint32(s.data[2+4*(slot+1):]))
	}
	return start, end
}

// Slot decodes the entries of slot. An empty slot returns nil without error.
func (s *Shard) Slot(slot int) ([]model.Entry, error) {
	if slot < 0 || slot >= s.slotCount {
		return nil, fmt.Errorf("%w: %d of %d", ErrSlotRange, slot, s.slotCount)
	}
	start, end := s.bounds(slot)
	if start < 2+4*s.slotCount || end > len(s.data) || start > end {
		return nil, fmt.Errorf("%w: slot %d spans [%d, %d) of %d", ErrCorrupt, slot, start, end, len(s.data))
	}
	entries, err := DecodeSlot(s.data[start:end])
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	return entries, nil
}

// Lookup is Slot with errors folded into an empty result.
func (s *Shard) Lookup(slot int) []model.Entry {
	entries, err := s.Slot(slot)
	if err != nil {
		return nil
	}
	return entries
}

// DecodeSlot decodes one slot payload.
func DecodeSlot(p []byte) ([]model.Entry, error) {
	if len(p) < 2 {
		return nil, fmt.Errorf("%w: missing row count", ErrCorrupt)
	}
	rows := int(binary.LittleEndian.Uint16(p))
	if rows == 0 {
		return nil, nil
	}
	textStart := 2 + rows*RowSize
	if len(p) < textStart {
		return nil, fmt.Errorf("%w: %d rows in %d bytes", ErrCorrupt, rows, len(p))
	}

	text := string(p[textStart:])
	reading, rest, ok := strings.Cut(text, "\t")
	if !ok || reading == "" {
		return nil, fmt.Errorf("%w: missing reading", ErrCorrupt)
	}
	words := strings.Split(rest, "\t")
	if len(words) != rows {
		return nil, fmt.Errorf("%w: %d words for %d rows", ErrCorrupt, len(words), rows)
	}

	entries := make([]model.Entry, rows)
	off := 2
	for i := range entries {
		word := words[i]
		if word == "" {
			word = reading
		}
		entries[i] = model.Entry{
			Word:    word,
			Reading: reading,
			LCID:    model.ClassID(binary.LittleEndian.Uint16(p[off:])),
			RCID:    model.ClassID(binary.LittleEndian.Uint16(p[off+2:])),
			MID:     model.SemanticID(binary.LittleEndian.Uint16(p[off+4:])),
			Score:   math.Float32frombits(binary.LittleEndian.Uint32(p[off+6:])),
			Flags:   model.FromDictionary,
		}
		off += RowSize
	}
	return entries, nil
}

// Decode opens data and decodes slot, returning nil on any damage.
func Decode(data []byte, slot int) []model.Entry {
	s, err := Open(data)
	if err != nil {
		return nil
	}
	return s.Lookup(slot)
}
