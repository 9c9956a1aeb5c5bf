package costs

import (
	"context"

	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/louds"
	"github.com/hupe1980/kanakanji/model"
)

// maxCursors bounds the cursors a Provider retains.
const maxCursors = 1 << 12

type cursorKey struct {
	bucket string
	coord  lattice.Coordinate
	start  int
}

// Provider serves one composing session: dictionary lookups through
// retained trie cursors, overlay lookups and the scores of Tables. It is not
// safe for concurrent use.
type Provider struct {
	*Tables

	store   *dictionary.Store
	opts    options
	ctx     context.Context
	cursors map[cursorKey]*louds.Cursor
}

// NewProvider creates a session provider. store may be nil when only
// overlays are searched.
func NewProvider(tables *Tables, store *dictionary.Store, optFns ...Option) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if tables == nil {
		tables = &Tables{}
	}
	return &Provider{
		Tables:  tables,
		store:   store,
		opts:    opts,
		ctx:     context.Background(),
		cursors: make(map[cursorKey]*louds.Cursor),
	}
}

// Reset drops the retained cursors.
func (p *Provider) Reset() {
	clear(p.cursors)
}

// ShouldBeRemoved reports whether e must not take part in any path.
func (p *Provider) ShouldBeRemoved(e model.Entry) bool {
	if e.Word == "" {
		return true
	}
	_, blocked := p.opts.blocked[e.Word]
	return blocked
}

// LookupDicdata returns the rows for every range the search ranges select,
// in range order. Within a range the dictionary rows come first, then the
// reserved dictionary buckets, then each overlay.
func (p *Provider) LookupDicdata(text lattice.Text, input, surface *lattice.SearchRange, needTypoCorrection bool) []lattice.Match {
	var out []lattice.Match
	for _, r := range lattice.SearchRanges(text, input, surface) {
		reading := text.Reading(r)
		if reading == "" {
			continue
		}
		seen := make(map[dedupeKey]int)
		add := func(rows []model.Entry, penalty float32) {
			for _, e := range rows {
				e.Reading = reading
				e.Score += penalty
				out = addUnique(out, seen, lattice.Match{Entry: e, Range: r})
			}
		}

		add(p.lookup(r, dictionary.BucketOf(reading), reading, model.FromDictionary), 0)
		if p.opts.userBuckets {
			add(p.lookup(r, dictionary.UserBucket, reading, model.FromUserDictionary), 0)
			add(p.lookup(r, dictionary.MemoryBucket, reading, model.Learned), 0)
		}
		for _, ov := range p.opts.overlays {
			add(ov.Exact(reading), 0)
		}
		if needTypoCorrection && p.opts.typo != nil {
			for _, v := range p.opts.typo(reading) {
				if v == reading {
					continue
				}
				add(p.lookup(r, dictionary.BucketOf(v), v, model.FromDictionary), p.opts.typoPenalty)
			}
		}
	}
	return out
}

type dedupeKey struct {
	word       string
	lcid, rcid model.ClassID
}

// addUnique appends m unless a row with the same word and classes exists
// for the range; then the better-scoring row is kept in the first slot.
func addUnique(out []lattice.Match, seen map[dedupeKey]int, m lattice.Match) []lattice.Match {
	k := dedupeKey{word: m.Entry.Word, lcid: m.Entry.LCID, rcid: m.Entry.RCID}
	if i, ok := seen[k]; ok {
		if m.Entry.Value() > out[i].Entry.Value() {
			out[i] = m
		}
		return out
	}
	seen[k] = len(out)
	return append(out, m)
}

// lookup finds reading in bucket through the cursor for r's start, tagging
// the rows with origin.
func (p *Provider) lookup(r lattice.Range, bucket, reading string, origin model.OriginFlags) []model.Entry {
	if p.store == nil {
		return nil
	}
	b, err := p.store.Bucket(p.ctx, bucket)
	if err != nil {
		p.opts.logger.Warn("bucket unavailable", "bucket", bucket, "error", err)
		return nil
	}
	if b == nil {
		return nil
	}
	ids, ok := p.store.CharTable().Encode(reading)
	if !ok {
		return nil
	}
	nodes := p.cursor(cursorKey{bucket: bucket, coord: r.Coordinate(), start: r.Start().Pos()}, b).Sync(ids)
	if len(nodes) != len(ids) || !b.HasEntries(nodes[len(nodes)-1]) {
		return nil
	}
	rows := b.Entries(p.ctx, nodes[len(nodes)-1])
	for i := range rows {
		rows[i].Flags = origin
	}
	return rows
}

func (p *Provider) cursor(k cursorKey, b *dictionary.Bucket) *louds.Cursor {
	c, ok := p.cursors[k]
	if !ok {
		if len(p.cursors) >= maxCursors {
			clear(p.cursors)
		}
		c = b.Index().NewCursor()
		p.cursors[k] = c
	}
	return c
}

// Predict returns up to limit rows whose reading extends reading, from the
// dictionary and the overlays.
func (p *Provider) Predict(reading string, maxDepth, limit int) []model.Entry {
	var out []model.Entry
	if p.store != nil {
		out = append(out, p.store.PrefixLookup(p.ctx, reading, maxDepth, limit)...)
	}
	for _, ov := range p.opts.overlays {
		if len(out) >= limit {
			break
		}
		out = append(out, ov.Prefix(reading, limit-len(out))...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
