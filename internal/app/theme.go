package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rcorre/lasr/internal/config"
	"github.com/rcorre/lasr/internal/highlight"
)

// Theme holds the styles used to draw the UI.
type Theme struct {
	Base        tcell.Style
	Find        tcell.Style // matched text about to be replaced
	Replace     tcell.Style // replacement text
	Path        tcell.Style
	Stale       tcell.Style // paths changed on disk since the search
	Label       tcell.Style
	ActiveLabel tcell.Style
	Status      tcell.Style
	Error       tcell.Style
	Syntax      map[highlight.Class]tcell.Color
}

// defaultSyntax colors highlighted tokens in plain preview text.
var defaultSyntax = map[highlight.Class]tcell.Color{
	highlight.Keyword:  tcell.ColorFuchsia,
	highlight.String:   tcell.ColorOlive,
	highlight.Comment:  tcell.ColorGray,
	highlight.Number:   tcell.ColorAqua,
	highlight.Constant: tcell.ColorAqua,
	highlight.Function: tcell.ColorBlue,
	highlight.Type:     tcell.ColorTeal,
}

// NewTheme builds a Theme from the configured styles. Find and Replace are
// layered on top of Base.
func NewTheme(cfg config.ThemeConfig) (Theme, error) {
	base, err := cfg.Base.Style(tcell.StyleDefault)
	if err != nil {
		return Theme{}, err
	}
	find, err := cfg.Find.Style(base)
	if err != nil {
		return Theme{}, err
	}
	replace, err := cfg.Replace.Style(base)
	if err != nil {
		return Theme{}, err
	}

	return Theme{
		Base:        base,
		Find:        find,
		Replace:     replace,
		Path:        base.Foreground(tcell.ColorTeal),
		Stale:       base.Foreground(tcell.ColorYellow).Italic(true),
		Label:       base.Bold(true),
		ActiveLabel: base.Bold(true).Reverse(true),
		Status:      base.Dim(true),
		Error:       base.Foreground(tcell.ColorRed),
		Syntax:      defaultSyntax,
	}, nil
}

// DefaultTheme returns the theme for the default configuration.
func DefaultTheme() Theme {
	// Default styles always parse
	theme, _ := NewTheme(config.Default().Theme)
	return theme
}
