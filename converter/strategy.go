package converter

import "github.com/hupe1980/kanakanji/lattice"

// Strategy is how a conversion brought the lattice up to date.
type Strategy uint8

const (
	// NoChange reuses the lattice of an unchanged text.
	NoChange Strategy = iota
	// Append keeps the lattice and looks up only the words ending in the
	// new tail.
	Append
	// TailReplaced drops the nodes past the stable prefix, then continues
	// as Append.
	TailReplaced
	// Full rebuilds the lattice from scratch.
	Full
	// PostCommit converts the rebased lattice left by Commit.
	PostCommit
)

func (s Strategy) String() string {
	switch s {
	case NoChange:
		return "no_change"
	case Append:
		return "append"
	case TailReplaced:
		return "tail_replaced"
	case Full:
		return "full"
	case PostCommit:
		return "post_commit"
	default:
		return "unknown"
	}
}

// plan is a chosen strategy with the lattice prefix it keeps.
type plan struct {
	strategy    Strategy
	keepInput   int
	keepSurface int
}

// selectStrategy compares the new text with the snapshot of the last
// conversion.
func (k *Kana2Kanji) selectStrategy(dmap *lattice.DualIndexMap, input, surface []rune) plan {
	if !k.valid || k.dmap == nil {
		return plan{strategy: Full}
	}
	ni, ns := dmap.InputCount(), dmap.SurfaceCount()
	oi, oss := k.dmap.InputCount(), k.dmap.SurfaceCount()

	ci := commonPrefix(k.input, input)
	cs := commonPrefix(k.surface, surface)
	ki, ks := lattice.StablePrefix(k.dmap, dmap, min(ci, oi, ni), min(cs, oss, ns))

	if ki == oi && ks == oss && ki == ni && ks == ns {
		if k.committed {
			return plan{strategy: PostCommit, keepInput: ki, keepSurface: ks}
		}
		return plan{strategy: NoChange, keepInput: ki, keepSurface: ks}
	}
	if ki == 0 && ks == 0 {
		return plan{strategy: Full}
	}
	if ki == oi && ks == oss {
		return plan{strategy: Append, keepInput: ki, keepSurface: ks}
	}
	// An edit followed by unchanged text is an edit in the middle.
	if commonSuffix(k.input[ci:], input[ci:]) > 0 {
		return plan{strategy: Full}
	}
	return plan{strategy: TailReplaced, keepInput: ki, keepSurface: ks}
}

func commonPrefix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func commonSuffix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}
