// Package louds implements a read-only LOUDS (Level-Order Unary Degree
// Sequence) trie over dictionary readings.
//
// # Encoding
//
// Readings are mapped through a CharTable to byte ids (1..255; 0 is reserved
// for the root). The trie is serialized level by level:
//
//	10                  sentinel: the root's 1 bit and the super-root's terminator
//	1...10              for every node in BFS order: one 1 per child, then a 0
//	11...1              padding up to the next 64-bit word
//
// Node indices are dense and zero-based: the i-th 1 bit (counting the sentinel)
// is node i, so the root is node 0. The children of node p are the 1 bits that
// follow the p-th 0 bit.
//
// # File Format
//
//	.louds        bit vector, little-endian uint64 words, MSB-first bit order
//	.loudschars2  one char id byte per node (node 0 = root = 0)
//	charID.chid   the CharTable, one character per line (line n has id n+1)
//
// # Queries
//
//   - SearchNodeIndex: exact walk from the root
//   - PrefixNodeIndices: bounded breadth-first descendant enumeration
//   - ChildNodeIndices: zero-rank table plus in-word scanning
//   - SearchCharNodeIndex: per-char sorted node lists intersected with the child range
//   - Cursor: incremental walk for keys that grow one character per keystroke
//
// A miss is a normal outcome and is reported as (-1, false) or an empty slice.
//
// # Thread Safety
//
// Index is immutable after construction and safe for concurrent readers.
// Cursor and Builder are not.
package louds
