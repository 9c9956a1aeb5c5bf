package lattice

import (
	"fmt"
	"slices"

	"github.com/hupe1980/kanakanji/model"
)

// PathRef is a handle to a PathRecord in a PathArena.
type PathRef int32

// NoPath terminates a chain of records.
const NoPath PathRef = -1

// PathRecord is one step of a best path: the entry it ends with, the record
// of the path it extends and the cumulative score.
type PathRecord struct {
	Entry model.Entry
	Range Range
	Prev  PathRef
	// Total is the cumulative score of the path, including the transition
	// into the successor the record was created for.
	Total float32
	// TextLen is the byte length of the concatenated words of the path.
	TextLen int32
}

// PathArena owns the path records of one session.
type PathArena struct {
	records []PathRecord
}

// NewPathArena creates an arena with room for capacity records.
func NewPathArena(capacity int) *PathArena {
	return &PathArena{records: make([]PathRecord, 0, capacity)}
}

// Add appends rec and returns its handle. rec.Prev must refer to an existing
// record; this keeps every back reference pointing to an earlier slot.
func (a *PathArena) Add(rec PathRecord) PathRef {
	if rec.Prev != NoPath && (rec.Prev < 0 || int(rec.Prev) >= len(a.records)) {
		panic(fmt.Sprintf("lattice: record refers to %d in arena of %d", rec.Prev, len(a.records)))
	}
	a.records = append(a.records, rec)
	return PathRef(len(a.records) - 1)
}

// Get returns the record for ref. The pointer is valid until the next Add,
// Reset or Compact.
func (a *PathArena) Get(ref PathRef) *PathRecord {
	return &a.records[ref]
}

// Len returns the number of records.
func (a *PathArena) Len() int {
	return len(a.records)
}

// Reset drops all records.
func (a *PathArena) Reset() {
	clear(a.records)
	a.records = a.records[:0]
}

// Chain returns the records from the root to ref, in path order.
func (a *PathArena) Chain(ref PathRef) []*PathRecord {
	var chain []*PathRecord
	for r := ref; r != NoPath; r = a.records[r].Prev {
		chain = append(chain, &a.records[r])
	}
	slices.Reverse(chain)
	return chain
}

// Compact drops records no live handle reaches and rewrites the handles in
// place. Relative order is kept, so back references still point to earlier
// slots.
func (a *PathArena) Compact(live []*PathRef) {
	n := len(a.records)
	reachable := make([]bool, n)
	for _, p := range live {
		for r := *p; r != NoPath && !reachable[r]; r = a.records[r].Prev {
			reachable[r] = true
		}
	}

	remap := make([]PathRef, n)
	next := PathRef(0)
	for i := 0; i < n; i++ {
		if !reachable[i] {
			remap[i] = NoPath
			continue
		}
		rec := a.records[i]
		if rec.Prev != NoPath {
			rec.Prev = remap[rec.Prev]
		}
		a.records[next] = rec
		remap[i] = next
		next++
	}
	clear(a.records[next:])
	a.records = a.records[:next]

	for _, p := range live {
		if *p != NoPath {
			*p = remap[*p]
		}
	}
}
