package mcputils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Bind:
// - Properly typed arguments bind unchanged
// - JSON strings decode into slices, maps, booleans and numbers
// - Plain strings split on commas into slices
// - Strings that are not valid JSON pass through
// - Arguments of the wrong shape report ErrInvalidArguments

type args map[string]any

func (a args) GetArguments() map[string]any { return a }

type request struct {
	Pattern    string            `json:"pattern"`
	Paths      []string          `json:"paths,omitempty"`
	IgnoreCase bool              `json:"ignore_case,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}

func TestBind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args args
		want request
	}{
		{
			name: "proper types",
			args: args{"pattern": "foo", "paths": []string{"a", "b"}, "ignore_case": true, "limit": 10},
			want: request{Pattern: "foo", Paths: []string{"a", "b"}, IgnoreCase: true, Limit: 10},
		},
		{
			name: "JSON strings",
			args: args{"pattern": "foo", "paths": `["src", "lib"]`, "ignore_case": "true", "limit": "25"},
			want: request{Pattern: "foo", Paths: []string{"src", "lib"}, IgnoreCase: true, Limit: 25},
		},
		{
			name: "JSON object",
			args: args{"pattern": "foo", "labels": `{"k": "v"}`},
			want: request{Pattern: "foo", Labels: map[string]string{"k": "v"}},
		},
		{
			name: "comma separated",
			args: args{"pattern": "foo", "paths": "src,lib"},
			want: request{Pattern: "foo", Paths: []string{"src", "lib"}},
		},
		{
			name: "invalid JSON passes through",
			args: args{"pattern": "[not json"},
			want: request{Pattern: "[not json"},
		},
		{
			name: "float from client",
			args: args{"pattern": "foo", "limit": float64(7)},
			want: request{Pattern: "foo", Limit: 7},
		},
		{
			name: "unicode",
			args: args{"pattern": "héllo", "paths": `["世界"]`},
			want: request{Pattern: "héllo", Paths: []string{"世界"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got request
			require.NoError(t, Bind(tt.args, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_Invalid(t *testing.T) {
	t.Parallel()

	var got request
	err := Bind(args{"limit": "many"}, &got)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}
