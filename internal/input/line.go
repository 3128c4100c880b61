// Package input implements the single-line editors for the pattern and
// replacement, and the key bindings that drive them.
package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// LineInput is a single-line text editor. The cursor is a rune index.
type LineInput struct {
	text   []rune
	cursor int
}

// NewLineInput returns an editor holding text with the cursor at the end.
func NewLineInput(text string) *LineInput {
	r := []rune(text)
	return &LineInput{text: r, cursor: len(r)}
}

// Text returns the current contents.
func (l *LineInput) Text() string {
	return string(l.text)
}

// Cursor returns the cursor position as a rune index.
func (l *LineInput) Cursor() int {
	return l.cursor
}

// CursorColumn returns the display column of the cursor.
func (l *LineInput) CursorColumn() int {
	return runewidth.StringWidth(string(l.text[:l.cursor]))
}

// Width returns the display width of the contents.
func (l *LineInput) Width() int {
	return runewidth.StringWidth(string(l.text))
}

// HandleKey applies ev using keys. It returns the new text and true when the
// text changed; cursor movement and unbound keys return false.
func (l *LineInput) HandleKey(ev *tcell.EventKey, keys KeyMap) (string, bool) {
	if action, ok := keys.Lookup(ev); ok {
		return l.Apply(action)
	}

	if ev.Key() != tcell.KeyRune || ev.Modifiers()&^tcell.ModShift != 0 {
		return "", false
	}
	l.insert(ev.Rune())
	return l.Text(), true
}

// Apply performs an editing action. Actions that are not editing actions
// are ignored.
func (l *LineInput) Apply(action Action) (string, bool) {
	switch action {
	case CursorLeft:
		l.cursor = max(l.cursor-1, 0)
	case CursorRight:
		l.cursor = min(l.cursor+1, len(l.text))
	case CursorHome:
		l.cursor = 0
	case CursorEnd:
		l.cursor = len(l.text)

	case DeleteChar:
		if l.cursor >= len(l.text) {
			return "", false
		}
		l.text = append(l.text[:l.cursor], l.text[l.cursor+1:]...)
		return l.Text(), true

	case DeleteCharBackward:
		if l.cursor == 0 {
			return "", false
		}
		l.cursor--
		l.text = append(l.text[:l.cursor], l.text[l.cursor+1:]...)
		return l.Text(), true

	case DeleteWord:
		if l.cursor == 0 {
			return "", false
		}
		l.deleteWord()
		return l.Text(), true

	case DeleteToEndOfLine:
		if l.cursor >= len(l.text) {
			return "", false
		}
		l.text = l.text[:l.cursor]
		return l.Text(), true

	case DeleteLine:
		if len(l.text) == 0 {
			return "", false
		}
		l.text = l.text[:0]
		l.cursor = 0
		return l.Text(), true
	}
	return "", false
}

func (l *LineInput) insert(r rune) {
	l.text = append(l.text, 0)
	copy(l.text[l.cursor+1:], l.text[l.cursor:])
	l.text[l.cursor] = r
	l.cursor++
}

// deleteWord removes the word before the cursor along with any whitespace
// between it and the cursor, keeping the whitespace that precedes the word.
func (l *LineInput) deleteWord() {
	before := l.text[:l.cursor]

	end := len(before)
	for end > 0 && unicode.IsSpace(before[end-1]) {
		end--
	}
	start := end
	for start > 0 && !unicode.IsSpace(before[start-1]) {
		start--
	}

	rest := l.text[l.cursor:]
	text := make([]rune, 0, start+len(rest))
	text = append(text, l.text[:start]...)
	l.text = append(text, rest...)
	l.cursor = start
}
