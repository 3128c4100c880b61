// Package git answers the few repository questions the walker needs.
package git

import (
	"os/exec"
	"strings"
	"sync"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// WorktreeRoot returns the root of the worktree containing dir.
	// Returns false if dir is not inside a git repository or git is missing.
	WorktreeRoot(dir string) (string, bool)
}

// gitOps is the real implementation using exec.Command. Results are cached
// per directory since every restarted search asks again.
type gitOps struct {
	roots sync.Map // dir -> worktree root, "" when not a repository
}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) WorktreeRoot(dir string) (string, bool) {
	if v, ok := g.roots.Load(dir); ok {
		root := v.(string)
		return root, root != ""
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	output, err := cmd.Output()
	root := ""
	if err == nil {
		root = strings.TrimSpace(string(output))
	}
	g.roots.Store(dir, root)
	return root, root != ""
}

// Package-level variable for dependency injection.
// Tests can replace this with a mock implementation.
var defaultGitOps Operations = NewOperations()

// WorktreeRoot calls WorktreeRoot on the default implementation.
func WorktreeRoot(dir string) (string, bool) {
	return defaultGitOps.WorktreeRoot(dir)
}
