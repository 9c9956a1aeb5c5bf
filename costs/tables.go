package costs

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/kanakanji/model"
)

// Tables is the scoring data shared by all sessions. It is read-only and
// safe for concurrent use. Nil members score zero.
type Tables struct {
	Connection *Matrix
	Semantic   *Matrix
	Clauses    *ClauseTable
}

// ClassTransitionCost scores the transition from right class rcid to left
// class lcid.
func (t *Tables) ClassTransitionCost(rcid, lcid model.ClassID) float32 {
	return t.Connection.At(int(rcid), int(lcid))
}

// ClassTransitionCosts returns ClassTransitionCost with rcid bound.
func (t *Tables) ClassTransitionCosts(rcid model.ClassID) func(lcid model.ClassID) float32 {
	row := t.Connection.Row(int(rcid))
	if row == nil {
		return func(lcid model.ClassID) float32 { return t.ClassTransitionCost(rcid, lcid) }
	}
	oor := t.Connection.OutOfRange
	return func(lcid model.ClassID) float32 {
		if int(lcid) < len(row) {
			return row[lcid]
		}
		return oor
	}
}

// SemanticBigramCost scores clause semantic id next after prev.
func (t *Tables) SemanticBigramCost(prev, next model.SemanticID) float32 {
	return t.Semantic.At(int(prev), int(next))
}

// IsClauseBoundary reports whether a clause ends between rcid and lcid.
func (t *Tables) IsClauseBoundary(rcid, lcid model.ClassID) bool {
	return t.Clauses.IsClauseBoundary(rcid, lcid)
}

// IsSemanticBearing reports whether e names its clause.
func (t *Tables) IsSemanticBearing(e model.Entry) bool {
	return e.Flags&model.Synthetic == 0 && !t.Clauses.IsNeutral(e.MID)
}

// LoadFiles reads the tables from files. Empty paths leave the member nil.
func LoadFiles(connection, semantic, clauses string) (*Tables, error) {
	t := &Tables{}
	var err error
	if t.Connection, err = loadFile(connection, ReadMatrix); err != nil {
		return nil, err
	}
	if t.Semantic, err = loadFile(semantic, ReadMatrix); err != nil {
		return nil, err
	}
	if t.Clauses, err = loadFile(clauses, ReadClauseTable); err != nil {
		return nil, err
	}
	return t, nil
}

func loadFile[T any](path string, read func(io.Reader) (*T, error)) (*T, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
