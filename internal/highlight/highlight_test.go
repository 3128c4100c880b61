package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Highlighter:
// - Keywords, names, literals and comments are classified per grammar
// - Spans are ordered and never overlap
// - Unknown extensions and empty text yield no spans
// - Repeated calls are served from the cache

func TestSpans_Python(t *testing.T) {
	t.Parallel()

	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	spans := h.Spans("a.py", "def foo(x):\n    return None  # note\n")
	assert.Contains(t, spans, Span{Start: 0, End: 3, Class: Keyword})
	assert.Contains(t, spans, Span{Start: 4, End: 7, Class: Function})
	assert.Contains(t, spans, Span{Start: 16, End: 22, Class: Keyword})
	assert.Contains(t, spans, Span{Start: 23, End: 27, Class: Constant})
	assert.Contains(t, spans, Span{Start: 29, End: 35, Class: Comment})
	assertOrdered(t, spans)
}

func TestSpans_Rust(t *testing.T) {
	t.Parallel()

	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	spans := h.Spans("main.RS", `fn main() { let s = "hi"; let n: u32 = 5; }`)
	assert.Contains(t, spans, Span{Start: 0, End: 2, Class: Keyword})
	assert.Contains(t, spans, Span{Start: 3, End: 7, Class: Function})
	assert.Contains(t, spans, Span{Start: 12, End: 15, Class: Keyword})
	assert.Contains(t, spans, Span{Start: 20, End: 24, Class: String})
	assert.Contains(t, spans, Span{Start: 33, End: 36, Class: Type})
	assert.Contains(t, spans, Span{Start: 39, End: 40, Class: Number})
	assertOrdered(t, spans)
}

func TestSpans_Unsupported(t *testing.T) {
	t.Parallel()

	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	assert.Nil(t, h.Spans("notes.txt", "def foo(): pass"))
	assert.Nil(t, h.Spans("a.py", ""))
	assert.False(t, Supported("Makefile"))
	assert.True(t, Supported("x.tsx"))
}

func TestSpans_Cached(t *testing.T) {
	t.Parallel()

	h, err := New()
	require.NoError(t, err)
	defer h.Close()

	first := h.Spans("a.rb", "puts 'hello' # hi")
	require.NotEmpty(t, first)
	assert.Equal(t, first, h.Spans("b.rb", "puts 'hello' # hi"))
}

func TestClass_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "keyword", Keyword.String())
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "plain", Class(99).String())
}

func assertOrdered(t *testing.T, spans []Span) {
	t.Helper()
	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i-1].End, spans[i].Start, "spans overlap: %v %v", spans[i-1], spans[i])
	}
}
