// Package loudstxt implements the loudstxt3 shard format that stores the
// dictionary rows attached to LOUDS trie nodes.
//
// A shard holds a fixed number of slots; node n lives in shard n>>shift at
// slot n&(1<<shift-1). All integers are little-endian:
//
//	header: uint16 slotCount, slotCount × uint32 absolute slot offsets
//	slot:   uint16 rowCount
//	        rowCount × {uint16 lcid, uint16 rcid, uint16 mid, float32 score}
//	        reading '\t' word₁ '\t' … word_rowCount
//
// A word equal to its reading is stored as an empty field. Every slot is
// present; unused ones are a bare zero rowCount.
//
// Decoding fails closed: a damaged slot yields no rows instead of a panic.
package loudstxt
