package config

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gitlab.com/tozd/go/errors"
)

// ParseColor parses a color name, "#rrggbb" or a palette index (0-255).
// The empty string and "default" mean the terminal default.
func ParseColor(s string) (tcell.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "default", "reset":
		return tcell.ColorDefault, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return tcell.ColorDefault, errors.Errorf("%w: palette index %d out of range", ErrInvalidColor, n)
		}
		return tcell.PaletteColor(n), nil
	}

	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return tcell.ColorDefault, errors.Errorf("%w: %q", ErrInvalidColor, s)
		}
		v, err := strconv.ParseInt(s[1:], 16, 32)
		if err != nil {
			return tcell.ColorDefault, errors.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return tcell.NewHexColor(int32(v)), nil
	}

	if c, ok := tcell.ColorNames[s]; ok {
		return c, nil
	}
	return tcell.ColorDefault, errors.Errorf("%w: %q", ErrInvalidColor, s)
}

// Style converts s to a tcell style on top of base.
func (s StyleConfig) Style(base tcell.Style) (tcell.Style, error) {
	st := base
	if s.Fg != "" {
		fg, err := ParseColor(s.Fg)
		if err != nil {
			return base, err
		}
		st = st.Foreground(fg)
	}
	if s.Bg != "" {
		bg, err := ParseColor(s.Bg)
		if err != nil {
			return base, err
		}
		st = st.Background(bg)
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.StrikeThrough {
		st = st.StrikeThrough(true)
	}
	return st, nil
}
