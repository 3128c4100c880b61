package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		lang      Language
		expectErr error
	}{
		{name: "valid", pattern: "$FN($$$ARGS)", lang: LangPython},
		{name: "blank pattern", pattern: "  \t", lang: LangPython, expectErr: ErrEmptyPattern},
		{name: "unsupported language", pattern: "x", lang: "cobol", expectErr: ErrUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := Compile(tt.pattern, tt.lang)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, c.Pattern)
			assert.Equal(t, tt.lang, c.Language)
		})
	}
}

func TestCompile_AllLanguages(t *testing.T) {
	t.Parallel()

	for _, lang := range SupportedLanguages() {
		t.Run(string(lang), func(t *testing.T) {
			t.Parallel()
			_, err := Compile("$X", lang)
			assert.NoError(t, err)
		})
	}
}

func TestBuildFindArgs(t *testing.T) {
	t.Parallel()

	args, err := BuildFindArgs(Compiled{Pattern: "$FN($$$ARGS)", Language: LangPython}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"run",
		"--pattern", "$FN($$$ARGS)",
		"--lang", "python",
		"--strictness", "smart",
		"--json=compact",
		"--stdin",
	}, args)
}

func TestBuildFindArgs_AllStrictnessLevels(t *testing.T) {
	t.Parallel()

	for level := range ValidStrictnessLevels {
		t.Run(level, func(t *testing.T) {
			t.Parallel()
			args, err := BuildFindArgs(Compiled{Pattern: "x", Language: LangGo}, level)
			require.NoError(t, err)
			assert.Contains(t, args, level)
		})
	}
}

func TestBuildFindArgs_InvalidStrictness(t *testing.T) {
	t.Parallel()

	_, err := BuildFindArgs(Compiled{Pattern: "x", Language: LangGo}, "super-strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strictness: super-strict")
}

func TestBuildReplaceArgs(t *testing.T) {
	t.Parallel()

	args, err := BuildReplaceArgs(Compiled{Pattern: "$FN($$$ARGS)", Language: LangPython}, "ast", "$FN($$$ARGS, 5)")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"run",
		"--pattern", "$FN($$$ARGS)",
		"--lang", "python",
		"--strictness", "ast",
		"--json=compact",
		"--rewrite", "$FN($$$ARGS, 5)",
		"--stdin",
	}, args)
}

func TestBuildReplaceArgs_PatternWithShellMetacharacters(t *testing.T) {
	t.Parallel()

	// argv is passed directly to the process, nothing is quoted
	args, err := BuildReplaceArgs(Compiled{Pattern: "$(rm -rf /)", Language: LangBash}, "", "`whoami`; echo")
	require.NoError(t, err)
	assert.Equal(t, "$(rm -rf /)", args[2])
	assert.Equal(t, "`whoami`; echo", args[len(args)-2])
}

func TestInferLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		lang   Language
		wantOK bool
	}{
		{path: "main.go", lang: LangGo, wantOK: true},
		{path: "src/App.TSX", lang: LangTSX, wantOK: true},
		{path: "lib/util.py", lang: LangPython, wantOK: true},
		{path: "include/x.h", lang: LangC, wantOK: true},
		{path: "README", wantOK: false},
		{path: "notes.txt", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			lang, ok := InferLanguage(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.lang, lang)
		})
	}
}

func TestSupportedLanguages_SortedAndUnique(t *testing.T) {
	t.Parallel()

	langs := SupportedLanguages()
	require.NotEmpty(t, langs)
	for i := 1; i < len(langs); i++ {
		assert.Less(t, langs[i-1], langs[i])
	}
	assert.True(t, IsSupported(LangRust))
	assert.False(t, IsSupported("brainfuck"))
}
