package finder

import "regexp"

// Kind identifies the matching engine a pattern is routed to.
type Kind int

const (
	KindRegex Kind = iota
	KindStructural
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	default:
		return "regex"
	}
}

// metavariable matches $NAME captures and the $$$ wildcard.
var metavariable = regexp.MustCompile(`\$[A-Z_][A-Z_0-9]*|\$\$\$`)

// Classify reports whether pattern is structural (contains a metavariable or
// wildcard token) or a regular expression. Structural wins even when the
// pattern is also a valid regex.
func Classify(pattern string) Kind {
	if metavariable.MatchString(pattern) {
		return KindStructural
	}
	return KindRegex
}
