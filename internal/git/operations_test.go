package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGitOps(t *testing.T) {
	t.Parallel()

	m := NewMockGitOps("/repo", "/repo/vendor/dep")

	tests := []struct {
		dir    string
		want   string
		inRepo bool
	}{
		{"/repo", "/repo", true},
		{"/repo/src", "/repo", true},
		{"/repo/vendor/dep/x", "/repo/vendor/dep", true},
		{"/repository", "", false},
		{"/elsewhere", "", false},
	}
	for _, tt := range tests {
		root, ok := m.WorktreeRoot(tt.dir)
		assert.Equal(t, tt.want, root, tt.dir)
		assert.Equal(t, tt.inRepo, ok, tt.dir)
	}
	assert.Len(t, m.Calls, len(tests))
}

// Uses the real git binary and runs sequentially (NO t.Parallel()).
func TestGitOps_WorktreeRoot(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	t.Run("nested directory", func(t *testing.T) {
		dir := t.TempDir()
		cmd := exec.Command("git", "init", "-q")
		cmd.Dir = dir
		require.NoError(t, cmd.Run())

		sub := filepath.Join(dir, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0755))

		ops := NewOperations()
		root, ok := ops.WorktreeRoot(sub)
		require.True(t, ok)

		// TempDir may live behind a symlink (macOS /var -> /private/var)
		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not a repository", func(t *testing.T) {
		dir := t.TempDir()
		ops := NewOperations()

		_, ok := ops.WorktreeRoot(dir)
		assert.False(t, ok)

		// Cached answer
		_, ok = ops.WorktreeRoot(dir)
		assert.False(t, ok)
	})
}
