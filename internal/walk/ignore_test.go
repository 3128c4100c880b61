package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcorre/lasr/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnore_Matched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns string
		path     string
		isDir    bool
		want     bool
	}{
		{name: "basename at any depth", patterns: "*.log", path: "a/b/debug.log", want: true},
		{name: "literal name", patterns: "node_modules", path: "web/node_modules", isDir: true, want: true},
		{name: "no match", patterns: "*.log", path: "a/main.go", want: false},
		{name: "comment ignored", patterns: "# *.go", path: "main.go", want: false},
		{name: "blank lines ignored", patterns: "\n\n", path: "main.go", want: false},
		{name: "negation re-includes", patterns: "*.log\n!keep.log", path: "keep.log", want: false},
		{name: "last rule wins", patterns: "!keep.log\n*.log", path: "keep.log", want: true},
		{name: "dir only skips files", patterns: "build/", path: "build", isDir: false, want: false},
		{name: "dir only matches dirs", patterns: "build/", path: "build", isDir: true, want: true},
		{name: "anchored at base", patterns: "/todo.txt", path: "todo.txt", want: true},
		{name: "anchored not nested", patterns: "/todo.txt", path: "sub/todo.txt", want: false},
		{name: "slash pattern relative to base", patterns: "doc/*.txt", path: "doc/a.txt", want: true},
		{name: "single star stops at slash", patterns: "doc/*.txt", path: "doc/x/a.txt", want: false},
		{name: "leading double star", patterns: "**/foo", path: "a/b/foo", want: true},
		{name: "leading double star at top", patterns: "**/foo", path: "foo", want: true},
		{name: "middle double star zero dirs", patterns: "a/**/b", path: "a/b", want: true},
		{name: "middle double star many dirs", patterns: "a/**/b", path: "a/x/y/b", want: true},
		{name: "trailing double star", patterns: "gen/**", path: "gen/x/y.go", want: true},
		{name: "character class", patterns: "*.[oa]", path: "lib.a", want: true},
		{name: "escaped hash", patterns: `\#notes`, path: "#notes", want: true},
		{name: "trailing spaces trimmed", patterns: "*.tmp   ", path: "x.tmp", want: true},
		{name: "crlf lines", patterns: "*.log\r\n*.tmp\r\n", path: "x.tmp", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ig := &Ignore{}
			ig.AddPatterns(tt.patterns, ".")
			assert.Equal(t, tt.want, ig.Matched(tt.path, tt.isDir))
		})
	}
}

func TestIgnore_NestedBase(t *testing.T) {
	t.Parallel()

	root := &Ignore{}
	root.AddPatterns("*.gen", "repo")
	sub := &Ignore{parent: root}
	sub.AddPatterns("/local.txt\n!keep.gen", "repo/sub")

	assert.True(t, sub.Matched("repo/sub/local.txt", false))
	assert.False(t, root.Matched("repo/local.txt", false))
	assert.False(t, sub.Matched("repo/local.txt", false))

	// Child negation overrides the parent rule
	assert.False(t, sub.Matched("repo/sub/keep.gen", false))
	assert.True(t, sub.Matched("repo/sub/other.gen", false))
	assert.True(t, root.Matched("repo/keep.gen", false))
}

func TestIgnore_Nil(t *testing.T) {
	t.Parallel()

	var ig *Ignore
	assert.False(t, ig.Matched("anything", false))
}

func TestNewRootIgnore_RepositoryAncestors(t *testing.T) {
	// Not parallel: replaces worktreeRoot
	repo := filepath.Join(t.TempDir(), "repo")
	root := filepath.Join(repo, "sub", "dir")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git", "info"), 0755))
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".gitignore"), []byte("*.log\n/sub/dir/build\n/dir/nope.txt\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "info", "exclude"), []byte("secret.txt\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "sub", ".ignore"), []byte("/dir/gen.txt\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("!keep.log\n"), 0644))

	orig := worktreeRoot
	t.Cleanup(func() { worktreeRoot = orig })
	worktreeRoot = git.NewMockGitOps(repo).WorktreeRoot

	ig := newRootIgnore(root)

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"x.log", false, true},
		{"keep.log", false, false},
		{"build", true, true},
		{"gen.txt", false, true},
		{"nope.txt", false, false},
		{"secret.txt", false, true},
		{"other.txt", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ig.Matched(filepath.Join(root, tt.path), tt.isDir), tt.path)
	}

	// Outside any repository only root's own files apply
	worktreeRoot = git.NewMockGitOps().WorktreeRoot
	ig = newRootIgnore(root)
	assert.False(t, ig.Matched(filepath.Join(root, "x.log"), false))
}
