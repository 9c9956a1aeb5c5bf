// Package converter implements incremental kana to kanji conversion over a
// lattice.
//
// A Kana2Kanji serves one composing session. Each call compares the composing
// text with the text of the previous call and picks the cheapest way to bring
// the lattice up to date:
//
//   - NoChange: the text is unchanged; the previous result is returned.
//   - Append: characters were added at the end; only words ending in the new
//     tail are looked up and only paths into them are computed.
//   - TailReplaced: the end of the text changed; nodes touching the old tail
//     are dropped, then the new tail is handled like Append.
//   - Full: anything else; the lattice is rebuilt.
//   - PostCommit: a prefix was committed; the rest of the lattice is reused
//     behind a start node carrying the committed context.
//
// All strategies produce the same candidates as Full would for the same text.
package converter
