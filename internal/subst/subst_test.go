package subst

import (
	"context"
	"testing"

	"github.com/rcorre/lasr/internal/finder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		ranges []finder.Range
		repls  []string
		want   [][]Segment
	}{
		{
			name:   "single line",
			text:   "This is line one.",
			ranges: []finder.Range{{Start: 8, End: 12}},
			repls:  []string{"replacement"},
			want: [][]Segment{{
				{Kind: Plain, Text: "This is "},
				{Kind: Removed, Text: "line"},
				{Kind: Inserted, Text: "replacement"},
				{Kind: Plain, Text: " one."},
			}},
		},
		{
			name:   "empty replacement only removes",
			text:   "abc",
			ranges: []finder.Range{{Start: 1, End: 2}},
			repls:  []string{""},
			want: [][]Segment{{
				{Kind: Plain, Text: "a"},
				{Kind: Removed, Text: "b"},
				{Kind: Plain, Text: "c"},
			}},
		},
		{
			name:   "span starts and ends mid-line",
			text:   "foo bar\nbaz qux\nend",
			ranges: []finder.Range{{Start: 4, End: 11}},
			repls:  []string{"X"},
			want: [][]Segment{
				{{Kind: Plain, Text: "foo "}, {Kind: Removed, Text: "bar"}},
				{{Kind: Removed, Text: "baz"}, {Kind: Inserted, Text: "X"}, {Kind: Plain, Text: " qux"}},
				{{Kind: Plain, Text: "end"}},
			},
		},
		{
			name:   "span covers middle lines entirely",
			text:   "a1\nb2\nc3",
			ranges: []finder.Range{{Start: 1, End: 7}},
			repls:  []string{"-"},
			want: [][]Segment{
				{{Kind: Plain, Text: "a"}, {Kind: Removed, Text: "1"}},
				{{Kind: Removed, Text: "b2"}},
				{{Kind: Removed, Text: "c"}, {Kind: Inserted, Text: "-"}, {Kind: Plain, Text: "3"}},
			},
		},
		{
			name:   "several ranges and crlf",
			text:   "x=1\r\ny=2",
			ranges: []finder.Range{{Start: 2, End: 3}, {Start: 7, End: 8}},
			repls:  []string{"10", "20"},
			want: [][]Segment{
				{{Kind: Plain, Text: "x="}, {Kind: Removed, Text: "1"}, {Kind: Inserted, Text: "10"}},
				{{Kind: Plain, Text: "y="}, {Kind: Removed, Text: "2"}, {Kind: Inserted, Text: "20"}},
			},
		},
		{
			name:   "zero width range inserts",
			text:   "ab",
			ranges: []finder.Range{{Start: 0, End: 0}},
			repls:  []string{">"},
			want: [][]Segment{
				{{Kind: Inserted, Text: ">"}, {Kind: Plain, Text: "ab"}},
			},
		},
		{
			name:   "range ending after newline lands on next line",
			text:   "one.\ntwo.",
			ranges: []finder.Range{{Start: 0, End: 5}},
			repls:  []string{"1;"},
			want: [][]Segment{
				{{Kind: Removed, Text: "one."}},
				{{Kind: Inserted, Text: "1;"}, {Kind: Plain, Text: "two."}},
			},
		},
		{
			name: "no ranges",
			text: "plain",
			want: [][]Segment{{{Kind: Plain, Text: "plain"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitLines(tt.text, tt.ranges, tt.repls))
		})
	}
}

// Joining every line's plain and removed text must give back the original.
func TestSplitLines_Lossless(t *testing.T) {
	t.Parallel()

	text := "first line\nsecond line\r\nthird"
	ranges := []finder.Range{{Start: 6, End: 14}, {Start: 19, End: 28}}
	lines := SplitLines(text, ranges, []string{"A", "B"})
	require.Len(t, lines, 3)

	originals := []string{"first line", "second line", "third"}
	for i, segs := range lines {
		got := ""
		for _, s := range segs {
			if s.Kind != Inserted {
				got += s.Text
			}
		}
		assert.Equal(t, originals[i], got)
	}
}

func TestModel_SetReplacementWithoutRescan(t *testing.T) {
	t.Parallel()

	f, err := finder.New(`(\w+) is`, finder.Options{})
	require.NoError(t, err)

	text := "This is line one.\nThat is line two.\n"
	lines, err := f.FindText(context.Background(), "a.txt", text)
	require.NoError(t, err)

	m := NewModel(f, "")
	m.Add(finder.FileMatch{Path: "a.txt", Lines: lines})
	require.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.Matches())
	assert.Equal(t, []string{""}, m.Substitutions(0))

	m.SetReplacement("${1} was")
	assert.Equal(t, "${1} was", m.Replacement())
	assert.Equal(t, []string{"This was"}, m.Substitutions(0))
	assert.Equal(t, []string{"That was"}, m.Substitutions(1))

	p := m.Preview(1)
	assert.Equal(t, "a.txt", p.Path)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, [][]Segment{{
		{Kind: Removed, Text: "That is"},
		{Kind: Inserted, Text: "That was"},
		{Kind: Plain, Text: " line two."},
	}}, p.Segments)
}

func TestModel_PreviewsMatchCommit(t *testing.T) {
	t.Parallel()

	f, err := finder.New("This is", finder.Options{})
	require.NoError(t, err)

	const text = "This is line one."
	lines, err := f.FindText(context.Background(), "a.txt", text)
	require.NoError(t, err)

	m := NewModel(f, "${0}n't")
	m.Add(finder.FileMatch{Path: "a.txt", Lines: lines})

	// Rebuild the line from the preview: plain + inserted
	got := ""
	for _, s := range m.Preview(0).Segments[0] {
		if s.Kind != Removed {
			got += s.Text
		}
	}
	committed, err := f.Replace(context.Background(), "a.txt", text, "${0}n't")
	require.NoError(t, err)
	assert.Equal(t, "This isn't line one.", got)
	assert.Equal(t, committed, got)
}

func TestModel_PreviewsWindow(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, "")
	for _, p := range []string{"a", "b", "c"} {
		m.Add(finder.FileMatch{Path: p, Lines: []finder.LineMatch{{Number: 1, Text: "x"}}})
	}

	assert.Len(t, m.Previews(0, 2), 2)
	assert.Equal(t, "c", m.Previews(2, 10)[0].Path)
	assert.Empty(t, m.Previews(5, 1))
	assert.Len(t, m.Files(), 3)
}

func TestModel_Stale(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, "")
	m.Add(finder.FileMatch{Path: "a.txt", Lines: []finder.LineMatch{{Number: 1, Text: "x"}}})

	m.Stale("unknown.txt")
	assert.False(t, m.IsStale("unknown.txt"))

	m.Stale("a.txt")
	assert.True(t, m.IsStale("a.txt"))
	assert.True(t, m.Preview(0).Stale)
}
