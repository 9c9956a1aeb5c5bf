// Package composing provides a reference composing text for the converter.
//
// A Text is a sequence of segments. Each segment pairs the raw input
// characters that produced it with the surface characters they resolved to,
// such as "ka" and "か". Segment boundaries are boundaries in both coordinate
// systems; positions inside a segment exist in one system only. Keystroke
// interpretation (romaji tables, flick input) is left to the caller, which
// appends segments as it resolves them.
package composing
