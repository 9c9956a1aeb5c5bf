package converter

import (
	"math"
	"time"

	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/model"
)

// minCompact is the arena size below which records are never compacted.
const minCompact = 1 << 14

// Kana2Kanji converts the text of one composing session. It is not safe for
// concurrent use; independent sessions use independent values.
type Kana2Kanji struct {
	provider CostProvider
	opts     options

	arena    *lattice.PathArena
	lat      *lattice.Lattice
	dmap     *lattice.DualIndexMap
	input    []rune
	surface  []rune
	start    model.Entry
	startRef lattice.PathRef
	result   lattice.BestList
	gen      uint32
	epoch    uint64

	// valid is false until the first conversion and after a reset.
	valid bool
	// dirty forces the next pass to recompute every path.
	dirty bool
	// committed marks a lattice rebased by Commit that has not been
	// converted yet.
	committed   bool
	constrained bool
	compactAt   int
}

// New creates a session converter.
func New(provider CostProvider, optFns ...Option) *Kana2Kanji {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Kana2Kanji{
		provider:  provider,
		opts:      opts,
		arena:     lattice.NewPathArena(1024),
		start:     model.BOS(),
		startRef:  lattice.NoPath,
		result:    lattice.NewBestList(opts.nbest),
		compactAt: minCompact,
	}
}

// NBest returns the number of paths kept per node.
func (k *Kana2Kanji) NBest() int {
	return k.opts.nbest
}

// Reset discards the lattice and the committed context. The next conversion
// is a Full one starting a new sentence. Callers reset when the composing
// session ends; after Commit the context carries over until then.
func (k *Kana2Kanji) Reset() {
	k.valid = false
	k.committed = false
	k.lat = nil
	k.dmap = nil
	k.input, k.surface = nil, nil
	k.start = model.BOS()
	k.startRef = lattice.NoPath
	k.arena.Reset()
	k.result.Reset(k.opts.nbest)
}

// Invalidate drops the lattice but keeps the committed context. Callers
// invalidate when the costs behind the lattice change; the next conversion
// is a Full one.
func (k *Kana2Kanji) Invalidate() {
	k.valid = false
	k.committed = false
	k.dirty = true
	k.lat = nil
	k.dmap = nil
	k.input, k.surface = nil, nil
}

// Convert returns the best candidates for text.
func (k *Kana2Kanji) Convert(text ComposingText) *Result {
	return k.convert(text, nil)
}

// ConvertWithConstraint is Convert restricted by c. When the text did not
// change since the last call, the lattice is reused and only the paths are
// recomputed.
func (k *Kana2Kanji) ConvertWithConstraint(text ComposingText, c PrefixConstraint) *Result {
	return k.convert(text, &c)
}

func (k *Kana2Kanji) convert(text ComposingText, c *PrefixConstraint) *Result {
	began := time.Now()
	dmap := lattice.NewDualIndexMap(text)
	input := []rune(text.InputText())
	surface := []rune(text.SurfaceText())
	input = input[:min(len(input), dmap.InputCount())]
	surface = surface[:min(len(surface), dmap.SurfaceCount())]

	p := k.selectStrategy(dmap, input, surface)
	rebuild := k.dirty || c != nil || k.constrained || p.strategy == Full || p.strategy == PostCommit

	ni, ns := dmap.InputCount(), dmap.SurfaceCount()
	switch p.strategy {
	case NoChange:
	case PostCommit:
	case Full:
		k.lat = k.lookup(text, dmap, 0, 0)
	case Append, TailReplaced:
		kept := k.lat.Prefix(p.keepInput, p.keepSurface)
		kept.Merge(k.lookup(text, dmap, p.keepInput, p.keepSurface))
		k.lat = kept
	}
	k.dmap = dmap
	k.input, k.surface = input, surface

	if p.strategy != NoChange || rebuild {
		k.propagate(dmap, c, rebuild)
	}
	k.valid = true
	k.dirty = false
	k.committed = false
	k.constrained = c != nil
	k.epoch++

	r := &Result{
		Strategy: p.strategy,
		paths:    append([]lattice.Scored(nil), k.result.Items()...),
		owner:    k,
		epoch:    k.epoch,
	}
	elapsed := time.Since(began)
	k.opts.observer.RecordConversion(p.strategy.String(), r.Len(), elapsed)
	k.opts.logger.Debug("conversion",
		"strategy", p.strategy.String(),
		"input", ni,
		"surface", ns,
		"kept_input", p.keepInput,
		"kept_surface", p.keepSurface,
		"nodes", k.lat.Len(),
		"records", k.arena.Len(),
		"paths", r.Len(),
		"constrained", c != nil,
		"duration", elapsed,
	)
	return r
}

// lookup returns a lattice of the nodes for every word ending after
// keepInput or keepSurface in its coordinate system.
func (k *Kana2Kanji) lookup(text ComposingText, dmap *lattice.DualIndexMap, keepInput, keepSurface int) *lattice.Lattice {
	k.gen++
	ni, ns := dmap.InputCount(), dmap.SurfaceCount()
	lat := lattice.New(ni, ns)
	limit := func(start, count int) int {
		if k.opts.maxWordLength > 0 {
			return min(count, start+k.opts.maxWordLength)
		}
		return count
	}
	for _, d := range dmap.Indices() {
		var in, sur *lattice.SearchRange
		if i, ok := d.Input(); ok {
			r := &lattice.SearchRange{Start: i, MinEnd: max(i+1, keepInput+1), MaxEnd: limit(i, ni)}
			if !r.Empty() {
				in = r
			}
		}
		if s, ok := d.Surface(); ok {
			r := &lattice.SearchRange{Start: s, MinEnd: max(s+1, keepSurface+1), MaxEnd: limit(s, ns)}
			if !r.Empty() {
				sur = r
			}
		}
		if in == nil && sur == nil {
			continue
		}
		for _, m := range k.provider.LookupDicdata(text, in, sur, k.opts.typo) {
			n := lattice.NewNode(m.Entry, m.Range, k.opts.nbest)
			n.Gen = k.gen
			lat.Add(n)
		}
	}
	return lat
}

// propagate pushes path scores forward through the lattice. With rebuild
// set every path is recomputed; otherwise only paths into nodes of the
// current lookup generation are, and the other nodes keep their paths.
func (k *Kana2Kanji) propagate(dmap *lattice.DualIndexMap, c *PrefixConstraint, rebuild bool) {
	nbest := k.opts.nbest
	if rebuild || k.startRef == lattice.NoPath {
		k.arena.Reset()
		k.startRef = k.arena.Add(lattice.PathRecord{
			Entry: k.start,
			Range: lattice.InputRange(0, 0),
			Prev:  lattice.NoPath,
		})
		rebuild = true
	}
	k.result.Reset(nbest)

	fresh := func(n *lattice.Node) bool { return rebuild || n.Gen == k.gen }
	k.lat.Each(dmap, func(n *lattice.Node) {
		reset := fresh(n)
		n.ResetPass(nbest, reset)
		if reset && n.IsHead() {
			n.Prevs.Insert(lattice.Scored{Ref: k.startRef, Score: 0})
		}
	})

	end := dmap.End()
	k.lat.Each(dmap, func(n *lattice.Node) {
		if n.Prevs.Len() == 0 || k.provider.ShouldBeRemoved(n.Entry) {
			return
		}
		values := k.values(n, c)

		next := dmap.DualIndexFor(n.Range.End())
		if next == end {
			for i, v := range values {
				if !valid(v) {
					continue
				}
				if c != nil && !c.exempt(n.Entry) && !c.complete(k.textLen(n, i)) {
					continue
				}
				if idx, ok := k.result.Slot(v); ok {
					k.result.InsertAt(idx, lattice.Scored{Ref: k.record(n, i, v), Score: v})
				}
			}
			return
		}

		cost := k.provider.ClassTransitionCosts(n.Entry.RCID)
		in, sur := k.lat.NodesAt(next)
		for _, successors := range [2][]*lattice.Node{in, sur} {
			for _, succ := range successors {
				if !fresh(succ) || k.provider.ShouldBeRemoved(succ.Entry) {
					continue
				}
				cc := cost(succ.Entry.LCID)
				for i, v := range values {
					if !valid(v) {
						continue
					}
					score := cc + v
					idx, ok := succ.Prevs.Slot(score)
					if !ok {
						continue
					}
					succ.Prevs.InsertAt(idx, lattice.Scored{Ref: k.record(n, i, score), Score: score})
				}
			}
		}
	})

	if !rebuild && k.arena.Len() > k.compactAt {
		refs := k.lat.PathRefs(nil)
		refs = k.result.PathRefs(refs)
		refs = append(refs, &k.startRef)
		k.arena.Compact(refs)
		k.compactAt = max(minCompact, 2*k.arena.Len())
	}
}

// values computes the score of every incoming path extended by n. Paths the
// constraint rejects get -Inf.
func (k *Kana2Kanji) values(n *lattice.Node, c *PrefixConstraint) []float32 {
	w := n.Entry.Value()
	head := n.IsHead()
	values := n.ValuesBuffer()
	for _, p := range n.Prevs.Items() {
		v := p.Score + w
		if head || c != nil {
			prev := k.arena.Get(p.Ref)
			if head {
				v += k.provider.ClassTransitionCost(prev.Entry.RCID, n.Entry.LCID)
			}
			if c != nil && !c.exempt(n.Entry) && !c.allows(int(prev.TextLen), n.Entry.Word) {
				v = float32(math.Inf(-1))
			}
		}
		values = append(values, v)
	}
	n.SetValues(values)
	return values
}

func valid(v float32) bool {
	return !math.IsInf(float64(v), -1)
}

// textLen returns the text length of path i of n extended by n.
func (k *Kana2Kanji) textLen(n *lattice.Node, i int) int {
	return int(k.arena.Get(n.Prevs.At(i).Ref).TextLen) + len(n.Entry.Word)
}

// record stores path i of n extended by n with the given score.
func (k *Kana2Kanji) record(n *lattice.Node, i int, score float32) lattice.PathRef {
	prev := n.Prevs.At(i).Ref
	return k.arena.Add(lattice.PathRecord{
		Entry:   n.Entry,
		Range:   n.Range,
		Prev:    prev,
		Total:   score,
		TextLen: k.arena.Get(prev).TextLen + int32(len(n.Entry.Word)),
	})
}

// Commit accepts c, which must come from the latest result, as the start of
// the sentence. The lattice behind it is kept for the rest of the text, and
// the next conversion continues after c's last class and semantic ids.
func (k *Kana2Kanji) Commit(c Candidate) {
	k.start = model.StartEntry(c.LastRCID, c.LastMID)
	k.dirty = true
	if !k.valid || k.dmap == nil || !c.hasEnd {
		k.valid = false
		return
	}
	d := k.dmap.DualIndexFor(c.End)
	i, okI := d.Input()
	s, okS := d.Surface()
	if !okI || !okS {
		// The candidate ends inside an unresolved character.
		k.valid = false
		return
	}
	k.lat = k.lat.Suffix(i, s)
	k.dmap = k.dmap.Suffix(i, s)
	k.input = k.input[min(i, len(k.input)):]
	k.surface = k.surface[min(s, len(k.surface)):]
	k.committed = true
}
