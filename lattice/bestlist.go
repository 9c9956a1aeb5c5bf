package lattice

import "sort"

// Scored is a path handle with its score.
type Scored struct {
	Ref   PathRef
	Score float32
}

// BestList keeps at most Cap paths sorted by descending score. Paths with
// equal scores keep their insertion order.
type BestList struct {
	items []Scored
	cap   int
}

// NewBestList creates a list bounded to n entries.
func NewBestList(n int) BestList {
	return BestList{items: make([]Scored, 0, min(n, 16)), cap: n}
}

// Reset empties the list and sets its bound.
func (l *BestList) Reset(n int) {
	l.items = l.items[:0]
	l.cap = n
}

// Len returns the number of paths.
func (l *BestList) Len() int { return len(l.items) }

// Cap returns the bound.
func (l *BestList) Cap() int { return l.cap }

// At returns the i-th best path.
func (l *BestList) At(i int) Scored { return l.items[i] }

// Items returns the paths, best first. The slice must not be modified.
func (l *BestList) Items() []Scored { return l.items }

// Slot returns where a path scoring score would go: after every path
// scoring at least as much. ok is false if the path would not survive.
func (l *BestList) Slot(score float32) (idx int, ok bool) {
	idx = sort.Search(len(l.items), func(i int) bool { return l.items[i].Score < score })
	return idx, idx < l.cap
}

// InsertAt inserts s at idx, which must come from Slot, dropping the worst
// path if the list is full.
func (l *BestList) InsertAt(idx int, s Scored) {
	if len(l.items) < l.cap {
		l.items = append(l.items, Scored{})
	}
	copy(l.items[idx+1:], l.items[idx:len(l.items)-1])
	l.items[idx] = s
}

// Insert adds s if it ranks among the best Cap paths.
func (l *BestList) Insert(s Scored) bool {
	idx, ok := l.Slot(s.Score)
	if !ok {
		return false
	}
	l.InsertAt(idx, s)
	return true
}

// PathRefs appends pointers to every handle, for arena compaction.
func (l *BestList) PathRefs(dst []*PathRef) []*PathRef {
	for i := range l.items {
		dst = append(dst, &l.items[i].Ref)
	}
	return dst
}
