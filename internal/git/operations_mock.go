package git

import "strings"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	// Roots lists worktree roots; a directory belongs to the longest root
	// that contains it.
	Roots []string
	Calls []string
}

// NewMockGitOps creates a mock that knows the given worktree roots.
func NewMockGitOps(roots ...string) *MockGitOps {
	return &MockGitOps{Roots: roots}
}

func (m *MockGitOps) WorktreeRoot(dir string) (string, bool) {
	m.Calls = append(m.Calls, dir)
	best := ""
	for _, r := range m.Roots {
		if (dir == r || strings.HasPrefix(dir, r+"/")) && len(r) > len(best) {
			best = r
		}
	}
	return best, best != ""
}
