package pattern

import "context"

// Engine defines the structural matching capability used by the finder.
// Implementations parse a single document, locate every occurrence of a
// compiled pattern and compute rewrite edits for it.
//
// This interface enables:
// - Dependency injection for testing (mock implementations)
// - Swapping the ast-grep binary for another backend
type Engine interface {
	// FindAll returns every match of the pattern in src, in document order.
	//
	// Error types:
	// - ErrPatternInvalid: the pattern does not parse in the compiled language.
	//   Callers skip the document.
	// - Other errors: execution failures (binary missing, timeout, bad output)
	FindAll(ctx context.Context, src []byte, p Compiled) ([]Match, error)

	// ReplaceAll returns the edits that rewrite every match of the pattern in
	// src with the replacement template. Edits are returned in document order
	// and must be applied from the end of the document backward.
	ReplaceAll(ctx context.Context, src []byte, p Compiled, replacement string) ([]Edit, error)
}
