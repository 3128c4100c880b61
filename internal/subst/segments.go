package subst

import (
	"sort"

	"github.com/rcorre/lasr/internal/finder"
)

// SegmentKind tells a renderer how to draw a Segment.
type SegmentKind int

const (
	Plain    SegmentKind = iota // unchanged text
	Removed                     // matched text that will be replaced
	Inserted                    // replacement text
)

func (k SegmentKind) String() string {
	switch k {
	case Removed:
		return "removed"
	case Inserted:
		return "inserted"
	default:
		return "plain"
	}
}

// Segment is a run of text within one line of a preview.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// SplitLines maps a match's text back onto its original lines.
//
// text is a LineMatch's text, ranges its matched spans and replacements the
// substitution for each range. The result has one entry per line of text.
// Matched text appears as Removed on every line it covers; the replacement
// is Inserted once, on the line where its range ends. Line terminators are
// not part of any segment.
func SplitLines(text string, ranges []finder.Range, replacements []string) [][]Segment {
	starts := lineStarts(text)
	lines := make([][]Segment, len(starts))

	owner := func(off int) int {
		// Last line starting at or before off
		return sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	}

	for i, ls := range starts {
		le := len(text)
		if i+1 < len(starts) {
			le = starts[i+1] - 1
			if le > ls && text[le-1] == '\r' {
				le--
			}
		}

		var segs []Segment
		p := ls
		for j, r := range ranges {
			first, last := owner(r.Start), owner(r.End)
			if i < first || i > last {
				continue
			}
			s := min(max(r.Start, ls), le)
			e := max(min(r.End, le), s)
			if s > p {
				segs = append(segs, Segment{Kind: Plain, Text: text[p:s]})
			}
			if e > s {
				segs = append(segs, Segment{Kind: Removed, Text: text[s:e]})
			}
			p = max(p, e)
			if i == last && j < len(replacements) && replacements[j] != "" {
				segs = append(segs, Segment{Kind: Inserted, Text: replacements[j]})
			}
		}
		if le > p {
			segs = append(segs, Segment{Kind: Plain, Text: text[p:le]})
		}
		lines[i] = segs
	}
	return lines
}

// lineStarts returns the offset of the first byte of every line in text.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
