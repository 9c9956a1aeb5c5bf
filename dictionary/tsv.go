package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/kanakanji/model"
)

// TSVColumns is the column order of a source file.
const TSVColumns = "reading\tword\tlcid\trcid\tmid\tscore"

// ParseError reports a malformed source line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dictionary: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadTSV parses source rows in TSVColumns order. Blank lines and lines
// starting with '#' are skipped.
func ReadTSV(r io.Reader) ([]model.Entry, error) {
	var out []model.Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := parseTSVLine(line)
		if err != nil {
			return nil, &ParseError{Line: n, Err: err}
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseTSVLine(line string) (model.Entry, error) {
	f := strings.Split(line, "\t")
	if len(f) != 6 {
		return model.Entry{}, fmt.Errorf("want 6 fields, got %d", len(f))
	}
	if f[0] == "" {
		return model.Entry{}, ErrEmptyReading
	}
	lcid, err := strconv.ParseUint(f[2], 10, 16)
	if err != nil {
		return model.Entry{}, fmt.Errorf("lcid: %w", err)
	}
	rcid, err := strconv.ParseUint(f[3], 10, 16)
	if err != nil {
		return model.Entry{}, fmt.Errorf("rcid: %w", err)
	}
	mid, err := strconv.ParseUint(f[4], 10, 16)
	if err != nil {
		return model.Entry{}, fmt.Errorf("mid: %w", err)
	}
	score, err := strconv.ParseFloat(f[5], 32)
	if err != nil {
		return model.Entry{}, fmt.Errorf("score: %w", err)
	}
	return model.Entry{
		Reading: f[0],
		Word:    f[1],
		LCID:    model.ClassID(lcid),
		RCID:    model.ClassID(rcid),
		MID:     model.SemanticID(mid),
		Score:   float32(score),
	}, nil
}
