package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/subst"
	"github.com/rcorre/lasr/internal/walk"
)

// printer writes headless results in a grep-like layout.
type printer struct {
	w        io.Writer
	path     *color.Color
	number   *color.Color
	match    *color.Color
	removed  *color.Color
	inserted *color.Color
	ok       *color.Color
	fail     *color.Color
	faint    *color.Color
}

func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{
		w:        w,
		path:     color.New(color.FgMagenta, color.Bold),
		number:   color.New(color.FgGreen),
		match:    color.New(color.FgRed, color.Bold),
		removed:  color.New(color.FgRed, color.CrossedOut),
		inserted: color.New(color.FgGreen, color.Bold),
		ok:       color.New(color.FgGreen),
		fail:     color.New(color.FgRed),
		faint:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.path, p.number, p.match, p.removed, p.inserted, p.ok, p.fail, p.faint} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// fileMatch prints a path heading followed by one numbered row per line of
// every match, with matched spans highlighted.
func (p *printer) fileMatch(fm finder.FileMatch) {
	fmt.Fprintln(p.w, p.path.Sprint(displayPath(fm.Path)))
	for _, lm := range fm.Lines {
		start := 0
		for i, line := range strings.Split(lm.Text, "\n") {
			end := start + len(line)
			fmt.Fprintf(p.w, "%s:%s\n", p.number.Sprint(lm.Number+i), p.highlight(line, start, end, lm.Ranges))
			start = end + 1
		}
	}
}

// highlight colors the parts of text[start:end] covered by ranges.
func (p *printer) highlight(line string, start, end int, ranges []finder.Range) string {
	var b strings.Builder
	pos := start
	for _, r := range ranges {
		rs, re := max(r.Start, start), min(r.End, end)
		if rs >= re {
			continue
		}
		b.WriteString(line[pos-start : rs-start])
		b.WriteString(p.match.Sprint(line[rs-start : re-start]))
		pos = re
	}
	b.WriteString(line[pos-start:])
	return b.String()
}

// preview prints the original lines of a match prefixed with "-" and the
// substituted lines prefixed with "+".
func (p *printer) preview(pv subst.Preview) {
	heading := fmt.Sprintf("%s:%s", p.path.Sprint(displayPath(pv.Path)), p.number.Sprint(pv.Number))
	if pv.Stale {
		heading += p.faint.Sprint(" (changed on disk)")
	}
	fmt.Fprintln(p.w, heading)

	for _, segs := range pv.Segments {
		var old strings.Builder
		for _, s := range segs {
			switch s.Kind {
			case subst.Removed:
				old.WriteString(p.removed.Sprint(s.Text))
			case subst.Plain:
				old.WriteString(s.Text)
			}
		}
		fmt.Fprintf(p.w, "%s %s\n", p.fail.Sprint("-"), old.String())
	}
	for _, segs := range pv.Segments {
		var updated strings.Builder
		for _, s := range segs {
			switch s.Kind {
			case subst.Inserted:
				updated.WriteString(p.inserted.Sprint(s.Text))
			case subst.Plain:
				updated.WriteString(s.Text)
			}
		}
		fmt.Fprintf(p.w, "%s %s\n", p.ok.Sprint("+"), updated.String())
	}
}

// report prints one row per committed file and a summary.
func (p *printer) report(r *apply.Report) {
	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(p.w, "%s %s: %v\n", p.fail.Sprint("✗"), displayPath(f.Path), f.Err)
		case f.Changed:
			fmt.Fprintf(p.w, "%s %s: %d %s\n", p.ok.Sprint("✓"), displayPath(f.Path), f.Matches, plural(f.Matches, "replacement", "replacements"))
		default:
			fmt.Fprintf(p.w, "%s %s: unchanged\n", p.faint.Sprint("·"), displayPath(f.Path))
		}
	}

	summary := fmt.Sprintf("%d %s changed", r.Changed(), plural(r.Changed(), "file", "files"))
	if n := len(r.Failed()); n > 0 {
		summary += p.fail.Sprintf(", %d failed", n)
	}
	fmt.Fprintln(p.w, summary)
}

// types prints one row per known file type.
func (p *printer) types(defs []walk.TypeDef) {
	for _, d := range defs {
		fmt.Fprintf(p.w, "%s: %s\n", p.path.Sprint(d.Name), strings.Join(d.Globs, ", "))
	}
}

// displayPath strips the "./" the walk adds under the default root.
func displayPath(path string) string {
	return strings.TrimPrefix(path, "."+string(filepath.Separator))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
