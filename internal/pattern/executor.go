package pattern

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultExecutionTimeout is the maximum time allowed for one ast-grep run
	DefaultExecutionTimeout = 30 * time.Second
)

// runAstGrep executes the binary with args, feeding src on stdin, and returns
// stdout. A run that matched nothing yields empty output, not an error.
//
// Errors:
// - Timeout: the run exceeded timeout
// - ErrPatternInvalid: ast-grep rejected the pattern for this language
// - Execution failed: any other non-zero exit
func runAstGrep(ctx context.Context, binaryPath string, args []string, src []byte, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultExecutionTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binaryPath, args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if execCtx.Err() == context.DeadlineExceeded {
		return nil, errors.Errorf("pattern search timed out (%s)", timeout)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
		// ast-grep exits 1 when nothing matched
		return nil, nil
	}

	msg := strings.TrimSpace(stderr.String())
	if msg != "" {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "pattern") || strings.Contains(lower, "parse") {
			return nil, errors.Errorf("%w: %s", ErrPatternInvalid, msg)
		}
		return nil, errors.Errorf("ast-grep error: %s", msg)
	}
	return nil, errors.Errorf("execution failed: %w", err)
}

// parseAstGrepOutput parses ast-grep's JSON compact format output.
//
// Note: ast-grep returns an array directly, not wrapped in an object.
func parseAstGrepOutput(data []byte) ([]AstGrepMatch, error) {
	// Empty output means no matches (not an error)
	if len(bytes.TrimSpace(data)) == 0 {
		return []AstGrepMatch{}, nil
	}

	var matches []AstGrepMatch
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, errors.Errorf("invalid JSON output: %w", err)
	}
	return matches, nil
}

// toMatches converts raw ast-grep output into document-ordered matches.
//
// Transformations:
// - Extract single metavariables as name -> text
// - Extract multi metavariables as the source text spanning the first to the
//   last captured node so separators survive
// - Keep the 0-indexed start row as reported
func toMatches(raw []AstGrepMatch, src []byte) []Match {
	matches := make([]Match, 0, len(raw))
	for _, m := range raw {
		match := Match{
			StartLine: m.Range.Start.Line,
			StartByte: m.Range.ByteOffset.Start,
			EndByte:   m.Range.ByteOffset.End,
			Text:      m.Text,
			Single:    make(map[string]string, len(m.MetaVariables.Single)),
			Multi:     make(map[string]string, len(m.MetaVariables.Multi)),
		}
		for name, mv := range m.MetaVariables.Single {
			match.Single[name] = mv.Text
		}
		for name, nodes := range m.MetaVariables.Multi {
			match.Multi[name] = spanText(nodes, src)
		}
		matches = append(matches, match)
	}
	return matches
}

// spanText returns the source text covered by nodes, falling back to joining
// node texts when offsets fall outside src.
func spanText(nodes []AstGrepMetaVar, src []byte) string {
	if len(nodes) == 0 {
		return ""
	}
	start := nodes[0].Range.ByteOffset.Start
	end := nodes[len(nodes)-1].Range.ByteOffset.End
	if start >= 0 && start <= end && end <= len(src) {
		return string(src[start:end])
	}
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = n.Text
	}
	return strings.Join(texts, "")
}

// toEdits converts raw ast-grep rewrite output into edits. Matches without a
// replacement (no --rewrite) produce no edit.
func toEdits(raw []AstGrepMatch) []Edit {
	edits := make([]Edit, 0, len(raw))
	for _, m := range raw {
		if m.Replacement == nil {
			continue
		}
		offsets := m.Range.ByteOffset
		if m.ReplacementOffsets != nil {
			offsets = *m.ReplacementOffsets
		}
		edits = append(edits, Edit{
			Start: offsets.Start,
			End:   offsets.End,
			Text:  *m.Replacement,
		})
	}
	return edits
}
