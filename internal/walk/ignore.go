package walk

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rcorre/lasr/internal/git"
)

// worktreeRoot locates the repository enclosing a walk root.
// Declared as a variable to allow mocking in tests.
var worktreeRoot = git.WorktreeRoot

// ignoreFiles are read in every directory, lowest priority first so later
// files can override with negations.
var ignoreFiles = []string{".gitignore", ".ignore", ".lasrignore"}

// ignoreRule is one compiled line of an ignore file.
type ignoreRule struct {
	original string
	negate   bool
	dirOnly  bool
	basename bool // no slash: match the entry name at any depth
	base     string
	prefix   string // path from the rule's directory to base, for rules above a walk root
	globs    []glob.Glob
}

// Ignore holds the rules in effect for one directory. Rules from parent
// directories are consulted first; the last matching rule wins.
type Ignore struct {
	parent *Ignore
	rules  []ignoreRule
}

// newRootIgnore loads the rules for a walk root: those of every directory
// between the enclosing repository's root and root, then root's own,
// including .git/info/exclude when root is a repository.
func newRootIgnore(root string) *Ignore {
	ig := &Ignore{}
	ig.addAncestors(root)
	ig.addFile(filepath.Join(root, ".git", "info", "exclude"), root)
	for _, name := range ignoreFiles {
		ig.addFile(filepath.Join(root, name), root)
	}
	return ig
}

// child returns the rules for dir, a subdirectory of the directory ig
// belongs to. Directories without ignore files share their parent's rules.
func (ig *Ignore) child(dir string) *Ignore {
	c := &Ignore{parent: ig}
	for _, name := range ignoreFiles {
		c.addFile(filepath.Join(dir, name), dir)
	}
	if len(c.rules) == 0 {
		return ig
	}
	return c
}

// addAncestors loads the ignore files above root up to the root of its
// repository. Their rules are rebased onto root with a prefix naming the
// path from each file's directory down to root.
func (ig *Ignore) addAncestors(root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return
	}
	top, ok := worktreeRoot(abs)
	if !ok {
		return
	}
	rel, err := filepath.Rel(top, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	ig.addFileWithPrefix(filepath.Join(top, ".git", "info", "exclude"), root, strings.Join(parts, "/")+"/")
	dir := top
	for i, part := range parts {
		prefix := strings.Join(parts[i:], "/") + "/"
		for _, name := range ignoreFiles {
			ig.addFileWithPrefix(filepath.Join(dir, name), root, prefix)
		}
		dir = filepath.Join(dir, part)
	}
}

func (ig *Ignore) addFile(path, base string) {
	ig.addFileWithPrefix(path, base, "")
}

func (ig *Ignore) addFileWithPrefix(path, base, prefix string) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return
	}
	ig.addPatterns(string(data), base, prefix)
}

// AddPatterns parses ignore file content whose patterns are relative to base.
// Lines that do not compile are skipped.
func (ig *Ignore) AddPatterns(content, base string) {
	ig.addPatterns(content, base, "")
}

func (ig *Ignore) addPatterns(content, base, prefix string) {
	base = filepath.ToSlash(filepath.Clean(base))
	for _, line := range strings.Split(content, "\n") {
		if r, ok := parseIgnoreRule(strings.TrimSuffix(line, "\r"), base); ok {
			r.prefix = prefix
			ig.rules = append(ig.rules, r)
		}
	}
}

func parseIgnoreRule(line, base string) (ignoreRule, bool) {
	r := ignoreRule{original: line, base: base}

	line = trimTrailingSpaces(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return r, false
	}
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return r, false
	}
	r.basename = !anchored && !strings.Contains(line, "/")

	// gobwas ** crosses separators but needs at least the slashes around it,
	// so a/**/b and **/b also get their zero-directory forms.
	patterns := []string{line}
	if strings.HasPrefix(line, "**/") {
		patterns = append(patterns, strings.TrimPrefix(line, "**/"))
	}
	if strings.Contains(line, "/**/") {
		patterns = append(patterns, strings.ReplaceAll(line, "/**/", "/"))
	}

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return r, false
		}
		r.globs = append(r.globs, g)
	}
	return r, true
}

// trimTrailingSpaces trims trailing spaces unless escaped.
func trimTrailingSpaces(line string) string {
	i := len(line) - 1
	for i >= 0 && line[i] == ' ' {
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			break
		}
		i--
	}
	return line[:i+1]
}

func (r ignoreRule) match(path string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}

	var target string
	if r.basename {
		target = filepath.Base(path)
	} else {
		if r.base != "." && !strings.HasPrefix(path, r.base+"/") {
			return false
		}
		target = r.prefix + strings.TrimPrefix(path, r.base+"/")
	}

	for _, g := range r.globs {
		if g.Match(target) {
			return true
		}
	}
	return false
}

// Matched reports whether path is ignored.
func (ig *Ignore) Matched(path string, isDir bool) bool {
	_, ignored := ig.match(filepath.ToSlash(filepath.Clean(path)), isDir)
	return ignored
}

func (ig *Ignore) match(path string, isDir bool) (decided, ignored bool) {
	if ig == nil {
		return false, false
	}
	decided, ignored = ig.parent.match(path, isDir)
	for _, r := range ig.rules {
		if r.match(path, isDir) {
			decided, ignored = true, !r.negate
		}
	}
	return decided, ignored
}
