package finder

// Range is a [Start, End) byte span within LineMatch.Text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineMatch is one matched unit of text.
//
// Number is the 1-based number of the first line the match touches, for both
// engines. Text holds every line the match touches without the final line
// terminator, so a multi-line match may begin and end mid-line. Ranges are
// the matched spans within Text, in order, each within [0, len(Text)]; a
// match that consumes the file's final terminator is clamped to Text.
type LineMatch struct {
	Number int     `json:"line"`
	Text   string  `json:"text"`
	Ranges []Range `json:"ranges"`

	// Submatches holds regex capture indices per range, relative to Text.
	Submatches [][]int `json:"-"`
	// Captures holds structural metavariable text keyed by name (FN, ARGS).
	Captures map[string]string `json:"captures,omitempty"`
}

// Lines returns the number of lines spanned by Text.
func (m LineMatch) Lines() int {
	n := 1
	for i := 0; i < len(m.Text); i++ {
		if m.Text[i] == '\n' {
			n++
		}
	}
	return n
}

// FileMatch is a path plus its matches in document order. A FileMatch is
// never produced with zero lines.
type FileMatch struct {
	Path  string      `json:"path"`
	Lines []LineMatch `json:"lines"`
}

// Count returns the number of matched ranges in the file.
func (f FileMatch) Count() int {
	n := 0
	for _, l := range f.Lines {
		n += len(l.Ranges)
	}
	return n
}
