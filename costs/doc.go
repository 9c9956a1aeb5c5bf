// Package costs provides the reference cost provider for the converter.
//
// Tables holds the read-only scoring data shared by every session: the class
// connection matrix, the semantic bigram matrix and the clause rules. A
// Provider binds Tables to a dictionary Store and any number of overlays
// (user dictionary, learned words) for one composing session. Providers keep
// LOUDS cursors between lookups and are not safe for concurrent use.
//
// # File formats
//
// Matrices are little-endian: a uint16 row count, a uint16 column count and
// rows*cols float32 costs in row-major order. Row is the left-hand id (rcid
// or previous mid), column the right-hand one.
//
// Clause rules are tab-separated lines; '#' starts a comment:
//
//	boundary	<rcid|*>	<lcid|*>	<0|1>
//	neutral	<mid>
//
// The first matching boundary rule decides; without a match every transition
// starts a new clause. Neutral semantic ids do not name a clause.
package costs
