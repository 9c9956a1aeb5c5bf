// Package lattice holds the data structures of the conversion search.
//
// Positions come in two coordinate systems: raw input positions and resolved
// surface (kana) positions. Index and Range carry their coordinate system as a
// tag, and DualIndexMap reconciles the two for one state of the composing
// text. A Lattice stores candidate nodes in buckets per start position of
// either system.
//
// Best paths are shared: every node keeps at most N incoming path handles in a
// BestList, and each handle names a PathRecord in a PathArena that points back
// at the record of its predecessor. Back references always point to earlier
// arena slots.
package lattice
