package pattern

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language is an ast-grep language identifier as accepted by --lang.
type Language string

const (
	LangBash       Language = "bash"
	LangC          Language = "c"
	LangCpp        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangCSS        Language = "css"
	LangElixir     Language = "elixir"
	LangGo         Language = "go"
	LangHaskell    Language = "haskell"
	LangHTML       Language = "html"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangJSON       Language = "json"
	LangKotlin     Language = "kotlin"
	LangLua        Language = "lua"
	LangPHP        Language = "php"
	LangPython     Language = "python"
	LangRuby       Language = "ruby"
	LangRust       Language = "rust"
	LangScala      Language = "scala"
	LangSwift      Language = "swift"
	LangTSX        Language = "tsx"
	LangTypeScript Language = "typescript"
	LangYAML       Language = "yaml"
)

// extensions maps lower-cased file extensions to the language ast-grep parses
// them with.
var extensions = map[string]Language{
	".sh":    LangBash,
	".bash":  LangBash,
	".c":     LangC,
	".h":     LangC,
	".cc":    LangCpp,
	".cpp":   LangCpp,
	".cxx":   LangCpp,
	".hpp":   LangCpp,
	".hh":    LangCpp,
	".cs":    LangCSharp,
	".css":   LangCSS,
	".ex":    LangElixir,
	".exs":   LangElixir,
	".go":    LangGo,
	".hs":    LangHaskell,
	".html":  LangHTML,
	".htm":   LangHTML,
	".java":  LangJava,
	".js":    LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".jsx":   LangJavaScript,
	".json":  LangJSON,
	".kt":    LangKotlin,
	".kts":   LangKotlin,
	".lua":   LangLua,
	".php":   LangPHP,
	".py":    LangPython,
	".pyi":   LangPython,
	".rb":    LangRuby,
	".rs":    LangRust,
	".scala": LangScala,
	".swift": LangSwift,
	".tsx":   LangTSX,
	".ts":    LangTypeScript,
	".mts":   LangTypeScript,
	".cts":   LangTypeScript,
	".yml":   LangYAML,
	".yaml":  LangYAML,
}

// InferLanguage returns the language for path based on its extension.
// Files with no known extension report false and are skipped by callers.
func InferLanguage(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	lang, ok := extensions[ext]
	return lang, ok
}

// SupportedLanguages returns every language the engine can parse, sorted.
func SupportedLanguages() []Language {
	seen := make(map[Language]bool)
	var langs []Language
	for _, lang := range extensions {
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// IsSupported reports whether lang is a language the engine can parse.
func IsSupported(lang Language) bool {
	for _, l := range extensions {
		if l == lang {
			return true
		}
	}
	return false
}
