package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/highlight"
	"github.com/rcorre/lasr/internal/input"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/subst"
)

const (
	headerRows = 3 // find, replace, status
	labelWidth = 9
	tabWidth   = 4
)

func (a *App) listHeight() int {
	_, h := a.screen.Size()
	return max(h-headerRows, 0)
}

func (a *App) draw() {
	a.screen.Clear()
	w, _ := a.screen.Size()

	a.drawInput(0, w, "Find", a.pattern, a.focus == focusPattern)
	a.drawInput(1, w, "Replace", a.replacement, a.focus == focusReplacement)
	a.drawStatus(2, w)
	a.drawPreviews(headerRows, w)

	a.screen.Show()
}

func (a *App) drawInput(y, w int, label string, line *input.LineInput, active bool) {
	style := a.theme.Label
	if active {
		style = a.theme.ActiveLabel
	}
	a.drawText(0, y, labelWidth-1, label, style)

	// Scroll horizontally to keep the cursor visible
	room := max(w-labelWidth-1, 1)
	skip := max(line.CursorColumn()-room, 0)
	x, col := labelWidth, 0
	for _, r := range line.Text() {
		rw := runewidth.RuneWidth(r)
		if col < skip {
			col += rw
			continue
		}
		x = a.drawRune(x, y, w, r, a.theme.Base)
	}

	if active {
		a.screen.ShowCursor(labelWidth+line.CursorColumn()-skip, y)
	}
}

func (a *App) drawStatus(y, w int) {
	a.drawText(0, y, w, a.statusText(), a.statusStyle())
}

func (a *App) statusStyle() tcell.Style {
	if a.session != nil && a.session.State() == session.Awaiting && a.pattern.Text() != "" {
		return a.theme.Error
	}
	if a.message != "" {
		return a.theme.Error
	}
	return a.theme.Status
}

func (a *App) statusText() string {
	if a.committing > 0 {
		return fmt.Sprintf("replacing %d/%d files", a.committed, a.committing)
	}
	if a.session == nil || a.pattern.Text() == "" {
		return "type a pattern to search"
	}
	if a.session.State() == session.Awaiting {
		return fmt.Sprintf("invalid pattern: %s", a.session.Err())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s in %d %s", a.model.Matches(), plural(a.model.Matches(), "match", "matches"),
		len(a.model.Files()), plural(len(a.model.Files()), "file", "files"))
	if f := a.session.Finder(); f != nil && f.Kind() == finder.KindStructural {
		b.WriteString(" [structural]")
	}
	if a.searching() {
		b.WriteString(", searching")
	}
	if n := a.staleFiles(); n > 0 {
		fmt.Fprintf(&b, ", %d changed on disk", n)
	}
	if a.message != "" {
		b.WriteString(": ")
		b.WriteString(a.message)
	}
	return b.String()
}

// searching reports whether the walk is still producing results.
func (a *App) searching() bool {
	if a.session.State() != session.Searching {
		return false
	}
	select {
	case <-a.session.Done():
		return false
	default:
		return true
	}
}

func (a *App) staleFiles() int {
	n := 0
	for _, fm := range a.model.Files() {
		if a.model.IsStale(fm.Path) {
			n++
		}
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// drawPreviews draws rows from the scroll offset until the screen is full.
// Each preview takes one screen line per line of its match.
func (a *App) drawPreviews(top, w int) {
	_, h := a.screen.Size()
	pathWidth := max(w/4, 10)

	y := top
	for i := a.offset; i < a.model.Len() && y < h; i++ {
		p := a.model.Preview(i)
		style := a.theme.Path
		if p.Stale {
			style = a.theme.Stale
		}
		label := runewidth.Truncate(fmt.Sprintf("%s:%d", p.Path, p.Number), pathWidth-1, "…")
		a.drawText(0, y, pathWidth-1, label, style)

		for _, line := range p.Segments {
			if y >= h {
				break
			}
			a.drawSegments(pathWidth, y, w, p.Path, line)
			y++
		}
	}
}

// drawSegments draws one preview line. Plain text is syntax highlighted
// using the original line, which is the plain and removed text together.
func (a *App) drawSegments(x, y, maxX int, path string, segs []subst.Segment) {
	var spans []highlight.Span
	if a.hl != nil {
		spans = a.hl.Spans(path, originalText(segs))
	}

	off, si := 0, 0
	col := x
	for _, seg := range segs {
		switch seg.Kind {
		case subst.Inserted:
			col = a.drawText(col, y, maxX, seg.Text, a.theme.Replace)
		case subst.Removed:
			col = a.drawText(col, y, maxX, seg.Text, a.theme.Find)
			off += len(seg.Text)
		default:
			for i, r := range seg.Text {
				pos := off + i
				for si < len(spans) && spans[si].End <= pos {
					si++
				}
				style := a.theme.Base
				if si < len(spans) && spans[si].Start <= pos {
					if c, ok := a.theme.Syntax[spans[si].Class]; ok {
						style = style.Foreground(c)
					}
				}
				col = a.drawRune(col, y, maxX, r, style)
			}
			off += len(seg.Text)
		}
	}
}

func originalText(segs []subst.Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind != subst.Inserted {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// drawText draws text from x, clipped at maxX, and returns the next column.
func (a *App) drawText(x, y, maxX int, text string, style tcell.Style) int {
	for _, r := range text {
		x = a.drawRune(x, y, maxX, r, style)
	}
	return x
}

func (a *App) drawRune(x, y, maxX int, r rune, style tcell.Style) int {
	if r == '\t' {
		for i := 0; i < tabWidth && x < maxX; i++ {
			a.screen.SetContent(x, y, ' ', nil, style)
			x++
		}
		return x
	}
	w := runewidth.RuneWidth(r)
	if w == 0 || x+w > maxX {
		return x
	}
	a.screen.SetContent(x, y, r, nil, style)
	return x + w
}
