// Package model defines the dictionary types shared by the index, the lattice
// and the converter.
//
// # Identity Types
//
//   - ClassID: left/right connection class used for class-transition costs
//   - SemanticID: coarse semantic category used for clause-level bigram costs
//
// # Data Types
//
//   - Entry: one dictionary row (word, reading, class ids, semantic id, score)
//   - OriginFlags: where an Entry came from (system dictionary, user dictionary, learning)
//
// Entries are immutable once produced. Lattice nodes embed them by value and
// path records point at the embedding node's copy.
package model
