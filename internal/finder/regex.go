package finder

import (
	"regexp"
	"strings"
)

// RegexFinder matches a compiled regular expression, either per line or over
// the whole document.
type RegexFinder struct {
	re        *regexp.Regexp
	multiLine bool
}

func newRegexFinder(pattern string, opts Options) (*RegexFinder, error) {
	var flags string
	if opts.IgnoreCase {
		flags += "i"
	}
	if opts.MultiLine {
		flags += "s"
	}
	expr := pattern
	if flags != "" {
		expr = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexFinder{re: re, multiLine: opts.MultiLine}, nil
}

// Regexp returns the compiled expression.
func (f *RegexFinder) Regexp() *regexp.Regexp {
	return f.re
}

func (f *RegexFinder) find(text string) []LineMatch {
	if f.multiLine {
		return f.findDocument(text)
	}
	return f.findLines(text)
}

func (f *RegexFinder) findLines(text string) []LineMatch {
	var out []LineMatch
	for i, l := range splitLines(text) {
		content := text[l.start:l.end]
		subs := f.re.FindAllStringSubmatchIndex(content, -1)
		if len(subs) == 0 {
			continue
		}
		out = append(out, LineMatch{
			Number:     i + 1,
			Text:       content,
			Ranges:     rangesOf(subs),
			Submatches: subs,
		})
	}
	return out
}

// findDocument matches the whole document and groups matches that touch the
// same lines into one LineMatch.
func (f *RegexFinder) findDocument(text string) []LineMatch {
	all := f.re.FindAllStringSubmatchIndex(text, -1)
	if len(all) == 0 {
		return nil
	}

	var out []LineMatch
	var cur *LineMatch
	var curStart, curEnd int
	for _, sm := range all {
		start, end := sm[0], sm[1]
		spanStart := lineStart(text, start)
		var spanEnd int
		if end == len(text) && end > start && text[end-1] == '\n' {
			// The final terminator of the file stays out of Text
			spanEnd = lineEnd(text, end-1)
		} else {
			spanEnd = max(lineEnd(text, end), end)
		}

		if cur != nil && spanStart <= curEnd {
			if spanEnd > curEnd {
				curEnd = spanEnd
				cur.Text = text[curStart:curEnd]
			}
		} else {
			out = append(out, LineMatch{
				Number: lineNumber(text, spanStart),
				Text:   text[spanStart:spanEnd],
			})
			cur = &out[len(out)-1]
			curStart, curEnd = spanStart, spanEnd
		}

		rel := make([]int, len(sm))
		for i, v := range sm {
			if v < 0 {
				rel[i] = v
				continue
			}
			rel[i] = min(v-curStart, len(cur.Text))
		}
		cur.Ranges = append(cur.Ranges, Range{Start: rel[0], End: rel[1]})
		cur.Submatches = append(cur.Submatches, rel)
	}
	return out
}

// replace rewrites text. Line mode replaces within each line and keeps line
// terminators untouched, matching exactly what find reported.
func (f *RegexFinder) replace(text, replacement string) string {
	if f.multiLine {
		return f.re.ReplaceAllString(text, replacement)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, l := range splitLines(text) {
		b.WriteString(f.re.ReplaceAllString(text[l.start:l.end], replacement))
		b.WriteString(text[l.end:l.next])
	}
	return b.String()
}

// substitute expands replacement for each match recorded in m.
func (f *RegexFinder) substitute(m LineMatch, replacement string) []string {
	out := make([]string, len(m.Submatches))
	for i, sm := range m.Submatches {
		out[i] = string(f.re.ExpandString(nil, replacement, m.Text, sm))
	}
	return out
}

func rangesOf(subs [][]int) []Range {
	ranges := make([]Range, len(subs))
	for i, sm := range subs {
		ranges[i] = Range{Start: sm[0], End: sm[1]}
	}
	return ranges
}
