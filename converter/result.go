package converter

import (
	"sort"

	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/model"
)

// Result holds the best complete paths of one conversion. It is valid until
// the next call on the Kana2Kanji that produced it.
type Result struct {
	Strategy Strategy

	paths []lattice.Scored
	owner *Kana2Kanji
	epoch uint64
}

// Len returns the number of complete paths.
func (r *Result) Len() int {
	return len(r.paths)
}

// Scores returns the path scores, best first.
func (r *Result) Scores() []float32 {
	out := make([]float32, len(r.paths))
	for i, p := range r.paths {
		out[i] = p.Score
	}
	return out
}

// Candidates reconstructs the paths into candidates, ordered by candidate
// value. It panics if the converter has run again since.
func (r *Result) Candidates() []Candidate {
	k := r.owner
	if k.epoch != r.epoch {
		panic("converter: result used after the next conversion")
	}
	out := make([]Candidate, 0, len(r.paths))
	for _, p := range r.paths {
		data := k.arena.CandidateData(p.Ref, k.provider)
		out = append(out, newCandidate(data, k.provider))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Candidate is one conversion of the text.
type Candidate struct {
	Text    string
	Value   float32
	Entries []model.Entry
	Clauses []lattice.Clause
	// LastRCID and LastMID continue the sentence after a commit.
	LastRCID model.ClassID
	LastMID  model.SemanticID
	// End is where the candidate ends in the composing text.
	End    lattice.Index
	hasEnd bool

	data lattice.CandidateData
}

func newCandidate(data lattice.CandidateData, rules lattice.ClauseRules) Candidate {
	c := Candidate{
		Text:    data.Text(),
		Value:   data.Value(rules),
		Entries: data.Entries,
		Clauses: data.Clauses,
		LastMID: data.StartMID,
		data:    data,
	}
	if n := len(data.Entries); n > 0 {
		c.LastRCID = data.Entries[n-1].RCID
	}
	if n := len(data.Clauses); n > 0 {
		c.LastMID = data.Clauses[n-1].MID
		c.End, c.hasEnd = data.Clauses[n-1].End()
	}
	return c
}

// Prefix returns the candidate made of the first n clauses of c, for
// committing part of a conversion.
func (k *Kana2Kanji) Prefix(c Candidate, n int) Candidate {
	return newCandidate(c.data.Prefix(n), k.provider)
}
