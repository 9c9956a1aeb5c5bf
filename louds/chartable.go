package louds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxChars is the number of characters a CharTable can hold.
const MaxChars = 255

var (
	// ErrTooManyChars is returned when a CharTable would exceed MaxChars.
	ErrTooManyChars = errors.New("louds: too many characters for byte ids")
	// ErrDuplicateChar is returned when a character appears twice in a CharTable.
	ErrDuplicateChar = errors.New("louds: duplicate character")
	// ErrUnknownChar is returned when a reading contains a character missing from the CharTable.
	ErrUnknownChar = errors.New("louds: unknown character")
)

// CharTable maps reading characters to byte ids. It is immutable once built and
// is passed explicitly to builders and readers.
type CharTable struct {
	chars []rune // chars[id-1]
	ids   map[rune]byte
}

// NewCharTable creates a CharTable where chars[i] gets id i+1.
func NewCharTable(chars []rune) (*CharTable, error) {
	if len(chars) > MaxChars {
		return nil, ErrTooManyChars
	}
	t := &CharTable{
		chars: append([]rune(nil), chars...),
		ids:   make(map[rune]byte, len(chars)),
	}
	for i, c := range chars {
		if _, ok := t.ids[c]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateChar, c)
		}
		t.ids[c] = byte(i + 1)
	}
	return t, nil
}

// ReadCharTable parses the charID.chid format: one character per line.
// Empty lines are skipped.
func ReadCharTable(r io.Reader) (*CharTable, error) {
	var chars []rune
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		c, _ := utf8.DecodeRuneInString(line)
		chars = append(chars, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return NewCharTable(chars)
}

// WriteTo writes the table in the charID.chid format.
func (t *CharTable) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, c := range t.chars {
		sb.WriteRune(c)
		sb.WriteByte('\n')
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Len returns the number of characters in the table.
func (t *CharTable) Len() int {
	return len(t.chars)
}

// ID returns the byte id of c.
func (t *CharTable) ID(c rune) (byte, bool) {
	id, ok := t.ids[c]
	return id, ok
}

// Char returns the character for id.
func (t *CharTable) Char(id byte) (rune, bool) {
	if id == 0 || int(id) > len(t.chars) {
		return 0, false
	}
	return t.chars[id-1], true
}

// Encode maps s to byte ids. ok is false if s contains an unknown character.
func (t *CharTable) Encode(s string) (ids []byte, ok bool) {
	ids = make([]byte, 0, len(s)/3+1)
	for _, c := range s {
		id, found := t.ids[c]
		if !found {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// Decode maps byte ids back to a string. Unknown ids are dropped.
func (t *CharTable) Decode(ids []byte) string {
	var sb strings.Builder
	for _, id := range ids {
		if c, ok := t.Char(id); ok {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
