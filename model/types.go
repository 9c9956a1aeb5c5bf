package model

import (
	"fmt"
	"strings"
)

// ClassID is a part-of-speech-like connection class.
type ClassID uint16

// SemanticID is a coarse semantic category.
type SemanticID uint16

const (
	// BOSClassID is the connection class of the beginning of a sentence.
	BOSClassID ClassID = 0
	// EOSClassID is the connection class of the end of a sentence.
	EOSClassID ClassID = 0

	// BOSSemanticID is the semantic id preceding the first clause.
	BOSSemanticID SemanticID = 500
	// DefaultSemanticID is assigned to clauses that contain no semantic-bearing entry.
	DefaultSemanticID SemanticID = 501
)

// OriginFlags records where an Entry came from.
type OriginFlags uint8

const (
	// FromDictionary marks rows read from the system dictionary.
	FromDictionary OriginFlags = 1 << iota
	// FromUserDictionary marks rows read from the user dictionary overlay.
	FromUserDictionary
	// Learned marks rows produced by the learning overlay.
	Learned
	// Synthetic marks rows fabricated by the converter (start nodes, fallbacks).
	Synthetic
)

// Has reports whether all bits of f are set.
func (o OriginFlags) Has(f OriginFlags) bool {
	return o&f == f
}

// Personal reports whether the row came from the user dictionary or learning.
func (o OriginFlags) Personal() bool {
	return o&(FromUserDictionary|Learned) != 0
}

func (o OriginFlags) String() string {
	if o == 0 {
		return "none"
	}
	var parts []string
	if o.Has(FromDictionary) {
		parts = append(parts, "dictionary")
	}
	if o.Has(FromUserDictionary) {
		parts = append(parts, "user")
	}
	if o.Has(Learned) {
		parts = append(parts, "learned")
	}
	if o.Has(Synthetic) {
		parts = append(parts, "synthetic")
	}
	return strings.Join(parts, "|")
}

// Entry is a single dictionary row.
type Entry struct {
	Word    string
	Reading string
	LCID    ClassID
	RCID    ClassID
	MID     SemanticID
	// Score is the unigram log-probability-like score (higher is better).
	Score float32
	Flags OriginFlags
	// Adjust is added to Score by the learning overlay.
	Adjust float32
}

// Value returns the effective score of the entry.
func (e Entry) Value() float32 {
	return e.Score + e.Adjust
}

// String returns a compact representation of the entry.
func (e Entry) String() string {
	return fmt.Sprintf("%s(%s)[%d,%d,%d]%.2f", e.Word, e.Reading, e.LCID, e.RCID, e.MID, e.Value())
}

// StartEntry returns the synthetic entry that precedes the first real entry of a
// path. After a commit it carries the committed path's trailing ids.
func StartEntry(rcid ClassID, mid SemanticID) Entry {
	return Entry{RCID: rcid, MID: mid, Flags: Synthetic}
}

// BOS returns the beginning-of-sentence entry.
func BOS() Entry {
	return StartEntry(BOSClassID, BOSSemanticID)
}
