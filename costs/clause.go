package costs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/kanakanji/model"
)

type boundaryRule struct {
	rcid, lcid int // -1 matches any id
	boundary   bool
}

func (r boundaryRule) matches(rcid, lcid model.ClassID) bool {
	return (r.rcid < 0 || r.rcid == int(rcid)) && (r.lcid < 0 || r.lcid == int(lcid))
}

// ClauseTable decides clause boundaries and which semantic ids name a
// clause.
type ClauseTable struct {
	rules   []boundaryRule
	neutral map[model.SemanticID]struct{}
}

// NewClauseTable creates a table that starts a clause at every transition
// and treats every semantic id as meaningful.
func NewClauseTable() *ClauseTable {
	return &ClauseTable{neutral: make(map[model.SemanticID]struct{})}
}

// AddBoundary appends a rule. A negative id matches any id.
func (t *ClauseTable) AddBoundary(rcid, lcid int, boundary bool) {
	t.rules = append(t.rules, boundaryRule{rcid: rcid, lcid: lcid, boundary: boundary})
}

// AddNeutral marks mid as not naming a clause.
func (t *ClauseTable) AddNeutral(mid model.SemanticID) {
	t.neutral[mid] = struct{}{}
}

// IsClauseBoundary reports whether a clause ends between rcid and lcid.
func (t *ClauseTable) IsClauseBoundary(rcid, lcid model.ClassID) bool {
	if t == nil {
		return true
	}
	for _, r := range t.rules {
		if r.matches(rcid, lcid) {
			return r.boundary
		}
	}
	return true
}

// IsNeutral reports whether mid does not name a clause.
func (t *ClauseTable) IsNeutral(mid model.SemanticID) bool {
	if t == nil {
		return false
	}
	_, ok := t.neutral[mid]
	return ok
}

// ReadClauseTable parses the clause rule format.
func ReadClauseTable(r io.Reader) (*ClauseTable, error) {
	t := NewClauseTable()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := t.parse(fields); err != nil {
			return nil, fmt.Errorf("costs: clause table line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ClauseTable) parse(fields []string) error {
	switch fields[0] {
	case "boundary":
		if len(fields) != 4 {
			return fmt.Errorf("boundary wants 3 fields, got %d", len(fields)-1)
		}
		rcid, err := parseID(fields[1])
		if err != nil {
			return err
		}
		lcid, err := parseID(fields[2])
		if err != nil {
			return err
		}
		b, err := strconv.ParseBool(fields[3])
		if err != nil {
			return err
		}
		t.AddBoundary(rcid, lcid, b)
	case "neutral":
		if len(fields) != 2 {
			return fmt.Errorf("neutral wants 1 field, got %d", len(fields)-1)
		}
		mid, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return err
		}
		t.AddNeutral(model.SemanticID(mid))
	default:
		return fmt.Errorf("unknown directive %q", fields[0])
	}
	return nil
}

func parseID(s string) (int, error) {
	if s == "*" {
		return -1, nil
	}
	v, err := strconv.ParseUint(s, 10, 16)
	return int(v), err
}
