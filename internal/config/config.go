// Package config provides configuration loading for lasr.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (LASR_*)
//  3. Project config (.lasr.yaml in the search root)
//  4. User config ($XDG_CONFIG_HOME/lasr/config.yaml)
//  5. Built-in defaults
//
// An explicit --config file replaces both the user and project files.
//
// Environment Variable Convention:
//   - Prefix: LASR_
//   - Nested fields: Use underscores (LASR_SEARCH_IGNORE_CASE)
package config

import (
	"github.com/rcorre/lasr/internal/session"
)

// Config represents the complete lasr configuration.
type Config struct {
	LogLevel string              `yaml:"log_level" mapstructure:"log_level"`
	Search   SearchConfig        `yaml:"search" mapstructure:"search"`
	Types    map[string][]string `yaml:"types" mapstructure:"types"` // extra file types: name -> globs
	Theme    ThemeConfig         `yaml:"theme" mapstructure:"theme"`
	Keys     map[string]string   `yaml:"keys" mapstructure:"keys"` // key name -> action name
	AstGrep  AstGrepConfig       `yaml:"ast_grep" mapstructure:"ast_grep"`
}

// SearchConfig holds the defaults for every search.
type SearchConfig struct {
	IgnoreCase bool     `yaml:"ignore_case" mapstructure:"ignore_case"`
	MultiLine  bool     `yaml:"multi_line" mapstructure:"multi_line"` // patterns may span lines
	Threads    int      `yaml:"threads" mapstructure:"threads"`       // 0 = one per CPU
	Types      []string `yaml:"types" mapstructure:"types"`           // only search these file types
	TypesNot   []string `yaml:"types_not" mapstructure:"types_not"`   // never search these file types
	Hidden     bool     `yaml:"hidden" mapstructure:"hidden"`         // search hidden files and directories
	NoIgnore   bool     `yaml:"no_ignore" mapstructure:"no_ignore"`   // disregard .gitignore and friends
	Prefetch   int      `yaml:"prefetch" mapstructure:"prefetch"`     // results buffered ahead of the display
}

// ThemeConfig styles the preview.
type ThemeConfig struct {
	Base    StyleConfig `yaml:"base" mapstructure:"base"`       // surrounding text
	Find    StyleConfig `yaml:"find" mapstructure:"find"`       // removed text
	Replace StyleConfig `yaml:"replace" mapstructure:"replace"` // inserted text
}

// StyleConfig is a terminal text style. Colors are names ("red"),
// "#rrggbb", or palette indexes ("6"); empty means the terminal default.
type StyleConfig struct {
	Fg            string `yaml:"fg,omitempty" mapstructure:"fg"`
	Bg            string `yaml:"bg,omitempty" mapstructure:"bg"`
	Bold          bool   `yaml:"bold,omitempty" mapstructure:"bold"`
	Italic        bool   `yaml:"italic,omitempty" mapstructure:"italic"`
	Underline     bool   `yaml:"underline,omitempty" mapstructure:"underline"`
	StrikeThrough bool   `yaml:"strikethrough,omitempty" mapstructure:"strikethrough"`
}

// AstGrepConfig configures the structural search engine.
type AstGrepConfig struct {
	Binary      string `yaml:"binary" mapstructure:"binary"`             // explicit binary path
	AutoInstall bool   `yaml:"auto_install" mapstructure:"auto_install"` // download ast-grep when not found
	Strictness  string `yaml:"strictness" mapstructure:"strictness"`     // cst, smart, ast, relaxed, signature
	Timeout     int    `yaml:"timeout" mapstructure:"timeout"`           // per-file timeout in seconds
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Search: SearchConfig{
			Threads:  0,
			Types:    []string{},
			TypesNot: []string{},
			Prefetch: session.DefaultPrefetch,
		},
		Types: map[string][]string{},
		Theme: ThemeConfig{
			Base:    StyleConfig{Fg: "white"},
			Find:    StyleConfig{Fg: "red", StrikeThrough: true},
			Replace: StyleConfig{Fg: "green", Bold: true},
		},
		Keys: map[string]string{},
		AstGrep: AstGrepConfig{
			AutoInstall: true,
			Strictness:  "smart",
			Timeout:     30,
		},
	}
}
