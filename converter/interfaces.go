package converter

import (
	"time"

	"github.com/hupe1980/kanakanji/lattice"
	"github.com/hupe1980/kanakanji/model"
)

// ComposingText is the composing session's text. InputText has InputCount
// characters and SurfaceText has SurfaceCount characters.
type ComposingText interface {
	lattice.Text
	InputText() string
	SurfaceText() string
}

// CostProvider supplies dictionary lookups and scores.
type CostProvider interface {
	lattice.ClauseRules

	// LookupDicdata returns the entries for the words selected by input and
	// surface; either may be nil. Matches for one range come in a stable
	// order.
	LookupDicdata(text lattice.Text, input, surface *lattice.SearchRange, needTypoCorrection bool) []lattice.Match
	// ClassTransitionCost scores a transition from right class rcid to left
	// class lcid.
	ClassTransitionCost(rcid, lcid model.ClassID) float32
	// ClassTransitionCosts returns ClassTransitionCost with rcid bound.
	ClassTransitionCosts(rcid model.ClassID) func(lcid model.ClassID) float32
	// ShouldBeRemoved reports whether e must not take part in any path.
	ShouldBeRemoved(e model.Entry) bool
}

// Observer receives per-conversion measurements. The root package's
// MetricsCollector implements it.
type Observer interface {
	RecordConversion(strategy string, candidates int, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) RecordConversion(string, int, time.Duration) {}
