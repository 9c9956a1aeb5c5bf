package kanakanji

import (
	"context"
	"time"

	"github.com/hupe1980/kanakanji/composing"
	"github.com/hupe1980/kanakanji/converter"
	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/model"
)

// DefaultPredictDepth is how many characters Predict looks past the reading.
const DefaultPredictDepth = 4

// Session converts the text of one composing session. It is not safe for
// concurrent use.
type Session struct {
	id       uint64
	engine   *Engine
	logger   *Logger
	provider interface {
		converter.CostProvider
		Reset()
		Predict(reading string, maxDepth, limit int) []model.Entry
	}
	conv *converter.Kana2Kanji
	// gen is the engine overlay generation the lattice was built with.
	gen uint64
}

// ID returns the session id used in log records.
func (s *Session) ID() uint64 {
	return s.id
}

// Convert returns the best candidates for text. The result is valid until
// the next call on the session.
func (s *Session) Convert(text converter.ComposingText) *converter.Result {
	start := time.Now()
	s.sync()
	r := s.conv.Convert(text)
	s.logger.LogConversion(context.Background(), r.Strategy.String(), text.InputCount(), r.Len(), time.Since(start))
	return r
}

// sync drops the lattice when learned or user words changed since it was
// built.
func (s *Session) sync() {
	if gen := s.engine.overlayGen.Load(); gen != s.gen {
		s.conv.Invalidate()
		s.gen = gen
	}
}

// ConvertWithConstraint is Convert restricted to candidates that start with
// the constraint's text.
func (s *Session) ConvertWithConstraint(text converter.ComposingText, c converter.PrefixConstraint) *converter.Result {
	start := time.Now()
	s.sync()
	r := s.conv.ConvertWithConstraint(text, c)
	s.logger.LogConversion(context.Background(), r.Strategy.String(), text.InputCount(), r.Len(), time.Since(start))
	return r
}

// Commit accepts the first clauses of c, which must come from the latest
// result for text, learns its words and removes the committed input from
// text. clauses <= 0 or beyond the clause count commits all of c. The next
// conversion continues the sentence.
func (s *Session) Commit(text *composing.Text, c converter.Candidate, clauses int) (converter.Candidate, error) {
	head := c
	if clauses > 0 && clauses < len(c.Clauses) {
		head = s.conv.Prefix(c, clauses)
	}
	if len(head.Clauses) == 0 {
		return converter.Candidate{}, ErrNothingToCommit
	}
	input, ok := committedInput(text, head.End)
	if !ok {
		err := &ErrCommitBoundary{Text: head.Text}
		s.logger.LogCommit(context.Background(), head.Text, 0, err)
		return converter.Candidate{}, err
	}
	if err := text.DropPrefix(input); err != nil {
		err = &ErrCommitBoundary{Text: head.Text, cause: err}
		s.logger.LogCommit(context.Background(), head.Text, input, err)
		return converter.Candidate{}, err
	}
	s.conv.Commit(head)
	// The rebased lattice is kept unless another session changed the
	// overlays in the meantime.
	gen := s.engine.learn(head.Entries...)
	if gen == s.gen+1 {
		s.gen = gen
	}
	s.logger.LogCommit(context.Background(), head.Text, input, nil)
	return head, nil
}

// committedInput maps the end of a committed candidate to the input
// position text must drop. Only segment boundaries qualify.
func committedInput(text *composing.Text, end lattice.Index) (int, bool) {
	if end.Coordinate() == lattice.InputCoordinate {
		_, ok := text.SurfaceIndex(end.Pos())
		return end.Pos(), ok
	}
	for i := 0; i <= text.InputCount(); i++ {
		if s, ok := text.SurfaceIndex(i); ok && s == end.Pos() {
			return i, true
		}
	}
	return 0, false
}

// Learn raises the words of c in later conversions without committing.
func (s *Session) Learn(c converter.Candidate) {
	s.engine.learn(c.Entries...)
}

// Predict returns up to limit words whose reading extends reading.
func (s *Session) Predict(reading string, limit int) []model.Entry {
	return s.provider.Predict(reading, DefaultPredictDepth, limit)
}

// Reset ends the sentence. The next conversion starts fresh.
func (s *Session) Reset() {
	s.conv.Reset()
	s.provider.Reset()
}
