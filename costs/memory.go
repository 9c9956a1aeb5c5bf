package costs

import (
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/kanakanji/model"
)

// Overlay is a small dictionary searched next to the system dictionary.
type Overlay interface {
	// Exact returns the rows for reading.
	Exact(reading string) []model.Entry
	// Prefix returns up to limit rows whose reading starts with reading.
	Prefix(reading string, limit int) []model.Entry
}

const (
	// DefaultLearnStep is added to a word's adjustment each time it is learned.
	DefaultLearnStep = 1
	// DefaultLearnLimit caps a learned adjustment.
	DefaultLearnLimit = 10
)

// Memory is the learning overlay: words the user chose, boosted each time
// they are chosen again. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	rows  map[string][]model.Entry
	keys  []string // sorted readings
	step  float32
	limit float32
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		rows:  make(map[string][]model.Entry),
		step:  DefaultLearnStep,
		limit: DefaultLearnLimit,
	}
}

// Learn records entries as chosen. A word learned again gains step up to the
// limit.
func (m *Memory) Learn(entries ...model.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.Reading == "" || e.Word == "" || e.Flags.Has(model.Synthetic) {
			continue
		}
		m.learn(e)
	}
}

func (m *Memory) learn(e model.Entry) {
	rows, ok := m.rows[e.Reading]
	if !ok {
		i := sort.SearchStrings(m.keys, e.Reading)
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = e.Reading
	}
	for i := range rows {
		r := &rows[i]
		if r.Word == e.Word && r.LCID == e.LCID && r.RCID == e.RCID {
			r.Adjust = min(r.Adjust+m.step, m.limit)
			return
		}
	}
	e.Flags = model.Learned
	e.Adjust = m.step
	m.rows[e.Reading] = append(rows, e)
}

// Forget removes word from reading.
func (m *Memory) Forget(reading, word string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[reading]
	kept := rows[:0]
	for _, r := range rows {
		if r.Word != word {
			kept = append(kept, r)
		}
	}
	if len(kept) > 0 {
		m.rows[reading] = kept
		return
	}
	delete(m.rows, reading)
	if i := sort.SearchStrings(m.keys, reading); i < len(m.keys) && m.keys[i] == reading {
		m.keys = append(m.keys[:i], m.keys[i+1:]...)
	}
}

// Len returns the number of learned rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rows := range m.rows {
		n += len(rows)
	}
	return n
}

// Exact implements Overlay.
func (m *Memory) Exact(reading string) []model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Entry(nil), m.rows[reading]...)
}

// Prefix implements Overlay.
func (m *Memory) Prefix(reading string, limit int) []model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Entry
	for i := sort.SearchStrings(m.keys, reading); i < len(m.keys) && len(out) < limit; i++ {
		if !strings.HasPrefix(m.keys[i], reading) {
			break
		}
		for _, r := range m.rows[m.keys[i]] {
			if len(out) == limit {
				break
			}
			out = append(out, r)
		}
	}
	return out
}

// Entries returns every learned row, ordered by reading.
func (m *Memory) Entries() []model.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Entry
	for _, k := range m.keys {
		out = append(out, m.rows[k]...)
	}
	return out
}
