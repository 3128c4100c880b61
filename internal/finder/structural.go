package finder

import (
	"context"
	"sort"
	"strings"

	"github.com/rcorre/lasr/internal/pattern"
	"gitlab.com/tozd/go/errors"
)

// StructuralFinder delegates matching to a structural engine, using the
// language inferred from each file's extension.
type StructuralFinder struct {
	pattern string
	engine  pattern.Engine
}

// compile binds the pattern to the language of path. ok is false when path
// has no known language.
func (f *StructuralFinder) compile(path string) (pattern.Compiled, bool, error) {
	lang, ok := pattern.InferLanguage(path)
	if !ok {
		return pattern.Compiled{}, false, nil
	}
	c, err := pattern.Compile(f.pattern, lang)
	if err != nil {
		return pattern.Compiled{}, false, err
	}
	return c, true, nil
}

func (f *StructuralFinder) find(ctx context.Context, path, text string) ([]LineMatch, error) {
	c, ok, err := f.compile(path)
	if err != nil || !ok {
		return nil, err
	}

	matches, err := f.engine.FindAll(ctx, []byte(text), c)
	if errors.Is(err, pattern.ErrPatternInvalid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].StartByte < matches[j].StartByte })

	out := make([]LineMatch, 0, len(matches))
	for _, m := range matches {
		if m.StartByte < 0 || m.EndByte > len(text) || m.StartByte > m.EndByte {
			continue
		}
		spanStart := lineStart(text, m.StartByte)
		spanEnd := max(lineEnd(text, m.EndByte), m.EndByte)

		captures := make(map[string]string, len(m.Single)+len(m.Multi))
		for k, v := range m.Single {
			captures[k] = v
		}
		for k, v := range m.Multi {
			captures[k] = v
		}

		out = append(out, LineMatch{
			Number:   m.StartLine + 1,
			Text:     text[spanStart:spanEnd],
			Ranges:   []Range{{Start: m.StartByte - spanStart, End: m.EndByte - spanStart}},
			Captures: captures,
		})
	}
	return out, nil
}

func (f *StructuralFinder) replace(ctx context.Context, path, text, replacement string) (string, error) {
	c, ok, err := f.compile(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return text, nil
	}

	edits, err := f.engine.ReplaceAll(ctx, []byte(text), c, replacement)
	if errors.Is(err, pattern.ErrPatternInvalid) {
		return text, nil
	}
	if err != nil {
		return "", err
	}
	return ApplyEdits(text, edits), nil
}

// substitute renders the replacement template for m from its captures.
func (f *StructuralFinder) substitute(m LineMatch, replacement string) []string {
	out := make([]string, len(m.Ranges))
	for i := range out {
		out[i] = ExpandTemplate(replacement, m.Captures)
	}
	return out
}

// ApplyEdits applies edits to text in one pass from the end of the document
// backward so earlier offsets stay valid. Edits that overlap an edit already
// applied, or fall outside text, are dropped.
func ApplyEdits(text string, edits []pattern.Edit) string {
	if len(edits) == 0 {
		return text
	}
	sorted := make([]pattern.Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := text
	limit := len(text)
	for _, e := range sorted {
		if e.Start < 0 || e.Start > e.End || e.End > limit {
			continue
		}
		out = out[:e.Start] + e.Text + out[e.End:]
		limit = e.Start
	}
	return out
}

// ExpandTemplate replaces $$$NAME and $NAME in tmpl with captured text.
// Names without a capture are left as written.
func ExpandTemplate(tmpl string, captures map[string]string) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] != '$' {
			b.WriteByte(tmpl[i])
			i++
			continue
		}

		j := i + 1
		if strings.HasPrefix(tmpl[i:], "$$$") {
			j = i + 3
		}
		k := j
		for k < len(tmpl) && isMetaChar(tmpl[k], k == j) {
			k++
		}
		if k == j {
			b.WriteString(tmpl[i:j])
			i = j
			continue
		}
		if v, ok := captures[tmpl[j:k]]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[i:k])
		}
		i = k
	}
	return b.String()
}

func isMetaChar(c byte, first bool) bool {
	if c == '_' || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}
