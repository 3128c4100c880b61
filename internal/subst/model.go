// Package subst turns search results into live replacement previews.
// Previews are recomputed from cached matches whenever the replacement
// changes; files are never re-read.
package subst

import (
	"github.com/rcorre/lasr/internal/finder"
)

// Preview is one rendered match: the original lines of a LineMatch broken
// into plain, removed and inserted segments.
type Preview struct {
	Path     string      `json:"path"`
	Number   int         `json:"line"`
	Segments [][]Segment `json:"segments"`
	Stale    bool        `json:"stale,omitempty"`
}

type row struct {
	file  int
	match finder.LineMatch
	subs  []string
}

// Model holds every match of one search generation plus the current
// replacement. It is owned by a single consumer and not safe for concurrent
// use.
type Model struct {
	finder      *finder.Finder
	replacement string
	files       []finder.FileMatch
	rows        []row
	stale       map[string]bool
	matches     int
}

// NewModel returns an empty model for results produced by f.
func NewModel(f *finder.Finder, replacement string) *Model {
	return &Model{
		finder:      f,
		replacement: replacement,
		stale:       make(map[string]bool),
	}
}

// Add appends the rows of fm, substituting the current replacement.
func (m *Model) Add(fm finder.FileMatch) {
	idx := len(m.files)
	m.files = append(m.files, fm)
	for _, lm := range fm.Lines {
		m.rows = append(m.rows, row{file: idx, match: lm, subs: m.substitute(lm)})
		m.matches += len(lm.Ranges)
	}
}

// SetReplacement recomputes every preview from the cached matches.
func (m *Model) SetReplacement(replacement string) {
	if replacement == m.replacement {
		return
	}
	m.replacement = replacement
	for i := range m.rows {
		m.rows[i].subs = m.substitute(m.rows[i].match)
	}
}

func (m *Model) substitute(lm finder.LineMatch) []string {
	if m.finder == nil {
		return nil
	}
	return m.finder.Substitute(lm, m.replacement)
}

// Replacement returns the current replacement.
func (m *Model) Replacement() string { return m.replacement }

// Finder returns the finder the results came from.
func (m *Model) Finder() *finder.Finder { return m.finder }

// Len returns the number of rows, one per LineMatch.
func (m *Model) Len() int { return len(m.rows) }

// Matches returns the number of matched ranges across all rows.
func (m *Model) Matches() int { return m.matches }

// Files returns the recorded file matches in arrival order.
func (m *Model) Files() []finder.FileMatch { return m.files }

// Substitutions returns the replacement text for each range of row i.
func (m *Model) Substitutions(i int) []string {
	return m.rows[i].subs
}

// Preview renders row i.
func (m *Model) Preview(i int) Preview {
	r := m.rows[i]
	path := m.files[r.file].Path
	return Preview{
		Path:     path,
		Number:   r.match.Number,
		Segments: SplitLines(r.match.Text, r.match.Ranges, r.subs),
		Stale:    m.stale[path],
	}
}

// Previews renders up to n rows starting at offset.
func (m *Model) Previews(offset, n int) []Preview {
	if offset < 0 {
		offset = 0
	}
	end := min(offset+n, len(m.rows))
	if offset >= end {
		return nil
	}
	out := make([]Preview, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, m.Preview(i))
	}
	return out
}

// Stale marks the rows of path as changed on disk since the search. Their
// previews may no longer reflect what a commit will write.
func (m *Model) Stale(path string) {
	for _, f := range m.files {
		if f.Path == path {
			m.stale[path] = true
			return
		}
	}
}

// IsStale reports whether path was marked stale.
func (m *Model) IsStale(path string) bool {
	return m.stale[path]
}
