package dictionary

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Reserved bucket names. They are used as artifact identifiers unchanged.
const (
	UserBucket          = "user"
	MemoryBucket        = "memory"
	UserShortcutsBucket = "user_shortcuts"
)

// IsReserved reports whether name is a reserved bucket name.
func IsReserved(name string) bool {
	switch name {
	case UserBucket, MemoryBucket, UserShortcutsBucket:
		return true
	}
	return false
}

// EscapeIdentifier turns a bucket name into a file-name safe identifier. Each
// UTF-16 code unit becomes four uppercase hex digits; the units are joined by
// '_' and enclosed in brackets, so "あ" becomes "[3042]" and "𠀋" becomes
// "[D840_DC0B]". Reserved names are returned unchanged.
func EscapeIdentifier(name string) string {
	if IsReserved(name) {
		return name
	}
	units := utf16.Encode([]rune(name))
	var sb strings.Builder
	sb.Grow(len(units)*5 + 1)
	sb.WriteByte('[')
	for i, u := range units {
		if i > 0 {
			sb.WriteByte('_')
		}
		fmt.Fprintf(&sb, "%04X", u)
	}
	sb.WriteByte(']')
	return sb.String()
}

// UnescapeIdentifier reverses EscapeIdentifier.
func UnescapeIdentifier(id string) (string, error) {
	if IsReserved(id) {
		return id, nil
	}
	if len(id) < 2 || id[0] != '[' || id[len(id)-1] != ']' {
		return "", fmt.Errorf("dictionary: malformed identifier %q", id)
	}
	body := id[1 : len(id)-1]
	if body == "" {
		return "", nil
	}
	parts := strings.Split(body, "_")
	units := make([]uint16, len(parts))
	for i, p := range parts {
		if len(p) != 4 {
			return "", fmt.Errorf("dictionary: malformed identifier %q", id)
		}
		v, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return "", fmt.Errorf("dictionary: malformed identifier %q: %w", id, err)
		}
		units[i] = uint16(v)
	}
	return string(utf16.Decode(units)), nil
}

// BucketOf returns the bucket holding reading: its first character.
func BucketOf(reading string) string {
	_, size := utf8.DecodeRuneInString(reading)
	return reading[:size]
}

// artifact names inside a version directory.
func bitsName(id string) string     { return id + ".louds" }
func charsName(id string) string    { return id + ".loudschars2" }
func terminalName(id string) string { return id + ".terminal" }
func shardName(id string, shard int) string {
	return id + strconv.Itoa(shard) + ".loudstxt3"
}
