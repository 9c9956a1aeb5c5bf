// Package bitset provides the bit vector helpers used by the succinct trie.
//
// Architecture:
//   - Appender: append-only builder for LOUDS bit vectors (MSB-first within each word)
//   - SelectZero: in-word select used by the LOUDS navigation
package bitset
