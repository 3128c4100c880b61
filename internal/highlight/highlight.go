// Package highlight classifies the tokens of preview text for syntax
// coloring, using tree-sitter grammars chosen by file extension.
package highlight

import (
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/maypok86/otter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"gitlab.com/tozd/go/errors"
)

// Class is the syntactic category of a span of text.
type Class int

const (
	Plain Class = iota
	Keyword
	String
	Comment
	Number
	Constant
	Function
	Type
)

func (c Class) String() string {
	switch c {
	case Keyword:
		return "keyword"
	case String:
		return "string"
	case Comment:
		return "comment"
	case Number:
		return "number"
	case Constant:
		return "constant"
	case Function:
		return "function"
	case Type:
		return "type"
	default:
		return "plain"
	}
}

// Span is a classified byte range of the highlighted text. Bytes not covered
// by any span are Plain.
type Span struct {
	Start int
	End   int
	Class Class
}

const cacheSize = 4096

var (
	languagesOnce sync.Once
	languages     map[string]*sitter.Language
)

func loadLanguages() {
	cLang := sitter.NewLanguage(c.Language())
	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())
	languages = map[string]*sitter.Language{
		".c":    cLang,
		".h":    cLang,
		".java": sitter.NewLanguage(java.Language()),
		".php":  sitter.NewLanguage(php.LanguagePHP()),
		".py":   sitter.NewLanguage(python.Language()),
		".rb":   sitter.NewLanguage(ruby.Language()),
		".rs":   sitter.NewLanguage(rust.Language()),
		".ts":   tsLang,
		".mts":  tsLang,
		".cts":  tsLang,
		".tsx":  sitter.NewLanguage(typescript.LanguageTSX()),
	}
}

// Supported reports whether path has a grammar.
func Supported(path string) bool {
	languagesOnce.Do(loadLanguages)
	_, ok := languages[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Highlighter computes spans and caches them by extension and text, since
// the same preview rows are rendered on every frame.
type Highlighter struct {
	cache otter.Cache[string, []Span]
}

// New creates a Highlighter.
func New() (*Highlighter, error) {
	languagesOnce.Do(loadLanguages)
	cache, err := otter.MustBuilder[string, []Span](cacheSize).Build()
	if err != nil {
		return nil, errors.Errorf("failed to build highlight cache: %w", err)
	}
	return &Highlighter{cache: cache}, nil
}

// Spans returns the classified spans of text in document order, or nil when
// the file type has no grammar.
func (h *Highlighter) Spans(path, text string) []Span {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := languages[ext]
	if !ok || text == "" {
		return nil
	}

	key := ext + "\x00" + text
	if spans, ok := h.cache.Get(key); ok {
		return spans
	}
	spans := parse(lang, []byte(text))
	h.cache.Set(key, spans)
	return spans
}

// Close releases the cache.
func (h *Highlighter) Close() {
	h.cache.Close()
}

func parse(lang *sitter.Language, source []byte) []Span {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var spans []Span
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		class, leaf := classify(n, source)
		if !leaf {
			return true
		}
		start, end := int(n.StartByte()), min(int(n.EndByte()), len(source))
		if class != Plain && start < end {
			spans = append(spans, Span{Start: start, End: end, Class: class})
		}
		return false
	})
	return spans
}

// classify returns the class of n and whether n should be treated as a
// single token rather than descended into.
func classify(n *sitter.Node, source []byte) (Class, bool) {
	kind := n.Kind()
	switch {
	case strings.Contains(kind, "comment"):
		return Comment, true
	case strings.Contains(kind, "string") || kind == "char_literal" || kind == "character_literal" || kind == "heredoc_body":
		return String, true
	}

	if n.ChildCount() > 0 {
		return Plain, false
	}

	switch {
	case strings.Contains(kind, "integer") || strings.Contains(kind, "float") || strings.Contains(kind, "number"):
		return Number, true
	case kind == "true" || kind == "false" || kind == "none" || kind == "null" || kind == "nil" || kind == "boolean":
		return Constant, true
	case kind == "type_identifier" || kind == "primitive_type" || kind == "predefined_type" || kind == "constant":
		return Type, true
	case isFunctionName(n):
		return Function, true
	case !n.IsNamed() && isWord(kind):
		return Keyword, true
	}
	return Plain, true
}

// isFunctionName reports whether n is the name of a function or method
// declaration.
func isFunctionName(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	pk := parent.Kind()
	if !strings.Contains(pk, "function") && !strings.Contains(pk, "method") {
		return false
	}
	name := parent.ChildByFieldName("name")
	return name != nil && name.StartByte() == n.StartByte() && name.EndByte() == n.EndByte()
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}
	return true
}

func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
