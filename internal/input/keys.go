package input

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownAction indicates a key binding naming an action that does not exist.
var ErrUnknownAction = errors.Base("unknown action")

// Action is a named editor or application command a key can be bound to.
type Action string

const (
	CursorLeft         Action = "cursor_left"
	CursorRight        Action = "cursor_right"
	CursorHome         Action = "cursor_home"
	CursorEnd          Action = "cursor_end"
	DeleteChar         Action = "delete_char"
	DeleteCharBackward Action = "delete_char_backward"
	DeleteWord         Action = "delete_word"
	DeleteToEndOfLine  Action = "delete_to_end_of_line"
	DeleteLine         Action = "delete_line"

	ToggleInput Action = "toggle_input"
	Commit      Action = "commit"
	Quit        Action = "quit"
	ScrollUp    Action = "scroll_up"
	ScrollDown  Action = "scroll_down"
	PageUp      Action = "page_up"
	PageDown    Action = "page_down"
)

var actions = map[Action]bool{
	CursorLeft: true, CursorRight: true, CursorHome: true, CursorEnd: true,
	DeleteChar: true, DeleteCharBackward: true, DeleteWord: true,
	DeleteToEndOfLine: true, DeleteLine: true,
	ToggleInput: true, Commit: true, Quit: true,
	ScrollUp: true, ScrollDown: true, PageUp: true, PageDown: true,
}

// KeyMap binds key names (as produced by KeyName) to actions.
type KeyMap map[string]Action

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"left":      CursorLeft,
		"ctrl+b":    CursorLeft,
		"right":     CursorRight,
		"ctrl+f":    CursorRight,
		"home":      CursorHome,
		"ctrl+a":    CursorHome,
		"end":       CursorEnd,
		"ctrl+e":    CursorEnd,
		"delete":    DeleteChar,
		"ctrl+d":    DeleteChar,
		"backspace": DeleteCharBackward,
		"ctrl+w":    DeleteWord,
		"ctrl+k":    DeleteToEndOfLine,
		"ctrl+u":    DeleteLine,
		"tab":       ToggleInput,
		"enter":     Commit,
		"esc":       Quit,
		"ctrl+c":    Quit,
		"up":        ScrollUp,
		"ctrl+p":    ScrollUp,
		"down":      ScrollDown,
		"ctrl+n":    ScrollDown,
		"pgup":      PageUp,
		"pgdn":      PageDown,
	}
}

// ParseKeyMap overlays user bindings (key name -> action name) on the
// defaults. Binding a key to "none" removes it.
func ParseKeyMap(bindings map[string]string) (KeyMap, error) {
	km := DefaultKeyMap()

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		name := normalizeKey(k)
		action := Action(strings.ToLower(strings.TrimSpace(bindings[k])))
		if action == "none" {
			delete(km, name)
			continue
		}
		if !actions[action] {
			errs = append(errs, errors.Errorf("%w: %q bound to %q", ErrUnknownAction, k, action))
			continue
		}
		km[name] = action
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return km, nil
}

// Lookup returns the action bound to ev, if any.
func (km KeyMap) Lookup(ev *tcell.EventKey) (Action, bool) {
	a, ok := km[KeyName(ev)]
	return a, ok
}

var keyNames = map[tcell.Key]string{
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "backtab",
	tcell.KeyEnter:      "enter",
	tcell.KeyEscape:     "esc",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyDelete:     "delete",
	tcell.KeyInsert:     "insert",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
}

// KeyName renders a key event as a lower-case name such as "a", "ctrl+w",
// "alt+b" or "left". Control codes that double as editing keys
// (backspace, tab, enter, esc) use the editing name.
func KeyName(ev *tcell.EventKey) string {
	key := ev.Key()
	if name, ok := keyNames[key]; ok {
		mods := ev.Modifiers()
		if key <= tcell.KeyUS || key == tcell.KeyDEL {
			mods &^= tcell.ModCtrl
		}
		return withModifiers(name, mods)
	}
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return withModifiers("ctrl+"+string(rune('a'+key-tcell.KeyCtrlA)), ev.Modifiers()&^tcell.ModCtrl)
	}
	if key == tcell.KeyRune {
		r := ev.Rune()
		mods := ev.Modifiers() &^ tcell.ModShift
		if mods&tcell.ModCtrl != 0 {
			r = unicode.ToLower(r)
		}
		return withModifiers(string(r), mods)
	}
	if key >= tcell.KeyF1 && key <= tcell.KeyF64 {
		return withModifiers(fmt.Sprintf("f%d", key-tcell.KeyF1+1), ev.Modifiers())
	}
	return fmt.Sprintf("key(%d)", key)
}

func withModifiers(name string, mods tcell.ModMask) string {
	var prefix string
	if mods&tcell.ModCtrl != 0 {
		prefix += "ctrl+"
	}
	if mods&tcell.ModAlt != 0 {
		prefix += "alt+"
	}
	if mods&tcell.ModShift != 0 {
		prefix += "shift+"
	}
	return prefix + name
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	if len(k) > 1 {
		k = strings.ReplaceAll(k, "-", "+")
	}
	switch k {
	case "escape":
		return "esc"
	case "return":
		return "enter"
	case "pageup":
		return "pgup"
	case "pagedown":
		return "pgdn"
	case "del":
		return "delete"
	}
	return k
}
