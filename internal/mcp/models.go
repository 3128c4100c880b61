package mcp

import (
	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/subst"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// FindRequest is the argument set of lasr_find.
type FindRequest struct {
	Pattern    string   `json:"pattern"`
	Paths      []string `json:"paths,omitempty"`       // relative to the project root
	IgnoreCase bool     `json:"ignore_case,omitempty"`
	MultiLine  bool     `json:"multi_line,omitempty"`
	Types      []string `json:"types,omitempty"`       // file types to search
	TypesNot   []string `json:"types_not,omitempty"`   // file types to skip
	Limit      int      `json:"limit,omitempty"`       // 1-1000, default 100
}

// ReplaceRequest is the argument set of lasr_replace.
type ReplaceRequest struct {
	FindRequest
	Replacement string `json:"replacement"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// Match is one matched unit in a find response.
type Match struct {
	Path     string            `json:"path"`
	Line     int               `json:"line"`
	Text     string            `json:"text"`
	Ranges   []finder.Range    `json:"ranges"`
	Captures map[string]string `json:"captures,omitempty"`
}

// FindResponse is the result of lasr_find.
type FindResponse struct {
	Matches   []Match  `json:"matches"`
	Total     int      `json:"total"` // matched lines before the limit
	Files     int      `json:"files"`
	Truncated bool     `json:"truncated,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// FileOutcome is the commit result for one file.
type FileOutcome struct {
	Path    string `json:"path"`
	Matches int    `json:"matches"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// ReplaceResponse is the result of lasr_replace.
type ReplaceResponse struct {
	Files     []FileOutcome   `json:"files"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Changed   int             `json:"changed"`
	DryRun    bool            `json:"dry_run,omitempty"`
	Previews  []subst.Preview `json:"previews"`
	Truncated bool            `json:"truncated,omitempty"`
	Metadata  Metadata        `json:"metadata"`
}

// Metadata describes how a request was executed.
type Metadata struct {
	TookMs  int64  `json:"took_ms"`
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"` // regex or structural
}

func outcomes(report *apply.Report) []FileOutcome {
	out := make([]FileOutcome, 0, len(report.Files))
	for _, f := range report.Files {
		o := FileOutcome{Path: f.Path, Matches: f.Matches, Changed: f.Changed}
		if f.Err != nil {
			o.Error = f.Err.Error()
		}
		out = append(out, o)
	}
	return out
}

// limit clamps a requested result limit.
func limit(n int) int {
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	default:
		return n
	}
}
