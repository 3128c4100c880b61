package walk

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrUnknownType indicates a file type name with no definition.
	ErrUnknownType = errors.Base("unknown file type")

	// ErrInvalidTypeDef indicates a malformed name:glob definition.
	ErrInvalidTypeDef = errors.Base("invalid type definition")
)

// defaultTypes are the built-in file types, matched against file names.
var defaultTypes = map[string][]string{
	"c":          {"*.c", "*.h"},
	"cpp":        {"*.cc", "*.cpp", "*.cxx", "*.hh", "*.hpp", "*.hxx", "*.h"},
	"csharp":     {"*.cs"},
	"css":        {"*.css", "*.scss", "*.sass", "*.less"},
	"elixir":     {"*.ex", "*.exs", "*.eex", "*.heex"},
	"go":         {"*.go"},
	"haskell":    {"*.hs", "*.lhs"},
	"html":       {"*.htm", "*.html"},
	"java":       {"*.java", "*.jsp"},
	"js":         {"*.js", "*.jsx", "*.mjs", "*.cjs", "*.vue"},
	"json":       {"*.json", "*.jsonl", "*.geojson"},
	"kotlin":     {"*.kt", "*.kts"},
	"lua":        {"*.lua"},
	"make":       {"[Mm]akefile", "GNUmakefile", "*.mk", "*.mak"},
	"markdown":   {"*.md", "*.markdown", "*.mdown", "*.mkd"},
	"php":        {"*.php", "*.php3", "*.php4", "*.php5", "*.phtml"},
	"py":         {"*.py", "*.pyi"},
	"ruby":       {"*.rb", "*.gemspec", "Gemfile", "Rakefile", ".irbrc"},
	"rust":       {"*.rs"},
	"scala":      {"*.scala", "*.sbt"},
	"sh":         {"*.sh", "*.bash", "*.zsh", ".bashrc", ".zshrc", ".profile"},
	"sql":        {"*.sql", "*.psql"},
	"swift":      {"*.swift"},
	"toml":       {"*.toml", "Cargo.lock"},
	"ts":         {"*.ts", "*.tsx", "*.mts", "*.cts"},
	"txt":        {"*.txt"},
	"yaml":       {"*.yaml", "*.yml"},
	"dockerfile": {"Dockerfile", "*.dockerfile", "Dockerfile.*"},
}

// TypeDef is a named group of file name globs.
type TypeDef struct {
	Name  string   `json:"name" yaml:"name"`
	Globs []string `json:"globs" yaml:"globs"`
}

// Types is a file type registry plus the selection applied during a walk.
// Configure it before walking; matching is read-only.
type Types struct {
	defs     map[string][]string
	compiled map[string][]glob.Glob
	selected []string
	negated  []string
}

// NewTypes returns a registry holding the built-in types.
func NewTypes() *Types {
	t := &Types{
		defs:     make(map[string][]string, len(defaultTypes)),
		compiled: make(map[string][]glob.Glob, len(defaultTypes)),
	}
	for name, globs := range defaultTypes {
		// Built-in globs always compile
		_ = t.Add(name, globs...)
	}
	return t
}

// Add appends globs to the type name, creating it if needed.
func (t *Types) Add(name string, globs ...string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Errorf("%w: empty name", ErrInvalidTypeDef)
	}
	for _, g := range globs {
		compiled, err := glob.Compile(g)
		if err != nil {
			return errors.Errorf("%w: %s: %s", ErrInvalidTypeDef, g, err.Error())
		}
		t.defs[name] = append(t.defs[name], g)
		t.compiled[name] = append(t.compiled[name], compiled)
	}
	return nil
}

// AddSpec parses a "name:glob" definition, as accepted by --type-add.
func (t *Types) AddSpec(spec string) error {
	name, g, ok := strings.Cut(spec, ":")
	if !ok || g == "" {
		return errors.Errorf("%w: %q (want name:glob)", ErrInvalidTypeDef, spec)
	}
	return t.Add(name, g)
}

// Select restricts the walk to files of type name. Multiple selections are
// unioned.
func (t *Types) Select(name string) error {
	if _, ok := t.defs[name]; !ok {
		return errors.Errorf("%w: %s", ErrUnknownType, name)
	}
	t.selected = append(t.selected, name)
	return nil
}

// Negate excludes files of type name.
func (t *Types) Negate(name string) error {
	if _, ok := t.defs[name]; !ok {
		return errors.Errorf("%w: %s", ErrUnknownType, name)
	}
	t.negated = append(t.negated, name)
	return nil
}

// Matches reports whether the file at path passes the selection. A nil
// registry or one without selections accepts every file not negated.
func (t *Types) Matches(path string) bool {
	if t == nil {
		return true
	}
	name := filepath.Base(path)
	for _, n := range t.negated {
		if t.matchType(n, name) {
			return false
		}
	}
	if len(t.selected) == 0 {
		return true
	}
	for _, n := range t.selected {
		if t.matchType(n, name) {
			return true
		}
	}
	return false
}

func (t *Types) matchType(typeName, fileName string) bool {
	for _, g := range t.compiled[typeName] {
		if g.Match(fileName) {
			return true
		}
	}
	return false
}

// List returns every known type sorted by name.
func (t *Types) List() []TypeDef {
	defs := make([]TypeDef, 0, len(t.defs))
	for name, globs := range t.defs {
		defs = append(defs, TypeDef{Name: name, Globs: append([]string(nil), globs...)})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
