package converter

import "github.com/hupe1980/kanakanji/model"

// PrefixConstraint restricts candidates to those whose text agrees with
// Bytes. An open constraint admits texts that are a prefix of Bytes or extend
// it; with HasEOS set the text must be a prefix while searching and equal
// Bytes at the end.
type PrefixConstraint struct {
	Bytes  []byte
	HasEOS bool
	// IgnoreMemoryAndUserDictionary exempts learned and user dictionary
	// words from the check.
	IgnoreMemoryAndUserDictionary bool
}

func (c *PrefixConstraint) exempt(e model.Entry) bool {
	return c.IgnoreMemoryAndUserDictionary && e.Flags.Personal()
}

// allows reports whether word may follow a path text of length offset.
func (c *PrefixConstraint) allows(offset int, word string) bool {
	if offset >= len(c.Bytes) {
		return !c.HasEOS || word == ""
	}
	rest := c.Bytes[offset:]
	if len(word) <= len(rest) {
		return string(rest[:len(word)]) == word
	}
	return !c.HasEOS && word[:len(rest)] == string(rest)
}

// complete reports whether a path text of length n may end the sentence.
func (c *PrefixConstraint) complete(n int) bool {
	return !c.HasEOS || n == len(c.Bytes)
}

// Satisfied reports whether text satisfies the constraint as a finished
// candidate.
func (c *PrefixConstraint) Satisfied(text string) bool {
	return c.allows(0, text) && c.complete(len(text))
}
