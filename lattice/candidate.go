package lattice

import (
	"strings"

	"github.com/hupe1980/kanakanji/model"
)

// ClauseRules decides how a path splits into clauses and scores them. The
// rules are data driven and supplied by the cost provider.
type ClauseRules interface {
	// IsClauseBoundary reports whether a clause ends between an entry with
	// right class rcid and one with left class lcid.
	IsClauseBoundary(rcid, lcid model.ClassID) bool
	// IsSemanticBearing reports whether e determines its clause's semantic id.
	IsSemanticBearing(e model.Entry) bool
	// SemanticBigramCost scores two adjacent clauses.
	SemanticBigramCost(prev, next model.SemanticID) float32
}

// Clause is a run of entries displayed and scored as one unit.
type Clause struct {
	Text   string
	Ranges []Range
	MID    model.SemanticID
	// NextLCID is the left class of the entry starting the following clause.
	NextLCID model.ClassID
	// Value is the path score at the clause's last entry.
	Value float32
	// Entries are the entries merged into the clause.
	Entries []model.Entry
}

// End returns the end of the clause's last range.
func (c Clause) End() (Index, bool) {
	if len(c.Ranges) == 0 {
		return Index{}, false
	}
	return c.Ranges[len(c.Ranges)-1].End(), true
}

// CandidateData is a path split into clauses.
type CandidateData struct {
	Clauses []Clause
	Entries []model.Entry
	// StartMID is the semantic context before the first clause.
	StartMID model.SemanticID
}

// CandidateData walks ref back to its start record and merges the entries
// into clauses.
func (a *PathArena) CandidateData(ref PathRef, rules ClauseRules) CandidateData {
	chain := a.Chain(ref)
	if len(chain) == 0 {
		return CandidateData{}
	}

	// The start record opens the first clause; the first word joins it.
	start := chain[0]
	clauses := []Clause{{MID: start.Entry.MID}}
	entries := make([]model.Entry, 0, len(chain)-1)

	prev := start
	for _, rec := range chain[1:] {
		e := rec.Entry
		entries = append(entries, e)
		last := &clauses[len(clauses)-1]
		if e.Word == "" {
			last.Entries = append(last.Entries, e)
			prev = rec
			continue
		}
		if last.Text == "" || !rules.IsClauseBoundary(prev.Entry.RCID, e.LCID) {
			last.Text += e.Word
			last.Entries = append(last.Entries, e)
			last.Ranges = append(last.Ranges, rec.Range)
			if (last.MID == model.BOSSemanticID && e.MID != model.BOSSemanticID) || rules.IsSemanticBearing(e) {
				last.MID = e.MID
			}
			last.Value = rec.Total
		} else {
			last.NextLCID = e.LCID
			mid := model.DefaultSemanticID
			if rules.IsSemanticBearing(e) {
				mid = e.MID
			}
			clauses = append(clauses, Clause{
				Text:    e.Word,
				Ranges:  []Range{rec.Range},
				MID:     mid,
				Value:   rec.Total,
				Entries: []model.Entry{e},
			})
		}
		prev = rec
	}
	return CandidateData{Clauses: clauses, Entries: entries, StartMID: start.Entry.MID}
}

// Text returns the concatenated clause texts.
func (c CandidateData) Text() string {
	var sb strings.Builder
	for _, cl := range c.Clauses {
		sb.WriteString(cl.Text)
	}
	return sb.String()
}

// Prefix returns the first n clauses as a candidate of their own.
func (c CandidateData) Prefix(n int) CandidateData {
	n = min(max(n, 0), len(c.Clauses))
	p := CandidateData{Clauses: c.Clauses[:n:n], StartMID: c.StartMID}
	for _, cl := range p.Clauses {
		p.Entries = append(p.Entries, cl.Entries...)
	}
	return p
}

// Value returns the score of the candidate: the path score at its last
// clause plus one semantic bigram cost per clause boundary, starting from
// StartMID.
func (c CandidateData) Value(rules ClauseRules) float32 {
	if len(c.Clauses) == 0 {
		return 0
	}
	var mm float32
	mid := c.StartMID
	for _, cl := range c.Clauses {
		mm += rules.SemanticBigramCost(mid, cl.MID)
		mid = cl.MID
	}
	return c.Clauses[len(c.Clauses)-1].Value + mm
}
