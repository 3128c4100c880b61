package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes_Matches(t *testing.T) {
	t.Parallel()

	t.Run("no selection accepts all", func(t *testing.T) {
		t.Parallel()
		types := NewTypes()
		assert.True(t, types.Matches("a/b/main.go"))
		assert.True(t, types.Matches("README"))
	})

	t.Run("nil accepts all", func(t *testing.T) {
		t.Parallel()
		var types *Types
		assert.True(t, types.Matches("x.bin"))
	})

	t.Run("select unions", func(t *testing.T) {
		t.Parallel()
		types := NewTypes()
		require.NoError(t, types.Select("go"))
		require.NoError(t, types.Select("py"))
		assert.True(t, types.Matches("cmd/main.go"))
		assert.True(t, types.Matches("tool.py"))
		assert.False(t, types.Matches("index.ts"))
	})

	t.Run("negate excludes", func(t *testing.T) {
		t.Parallel()
		types := NewTypes()
		require.NoError(t, types.Negate("markdown"))
		assert.False(t, types.Matches("docs/README.md"))
		assert.True(t, types.Matches("main.go"))
	})

	t.Run("exact file names", func(t *testing.T) {
		t.Parallel()
		types := NewTypes()
		require.NoError(t, types.Select("make"))
		assert.True(t, types.Matches("sub/Makefile"))
		assert.True(t, types.Matches("makefile"))
		assert.False(t, types.Matches("Makefile.bak"))
	})
}

func TestTypes_Unknown(t *testing.T) {
	t.Parallel()

	types := NewTypes()
	assert.ErrorIs(t, types.Select("cobol"), ErrUnknownType)
	assert.ErrorIs(t, types.Negate("cobol"), ErrUnknownType)
}

func TestTypes_AddSpec(t *testing.T) {
	t.Parallel()

	types := NewTypes()
	require.NoError(t, types.AddSpec("proto:*.proto"))
	require.NoError(t, types.AddSpec("go:*.tmpl"))
	require.NoError(t, types.Select("proto"))
	assert.True(t, types.Matches("api/v1/service.proto"))

	assert.ErrorIs(t, types.AddSpec("nocolon"), ErrInvalidTypeDef)
	assert.ErrorIs(t, types.AddSpec("name:"), ErrInvalidTypeDef)
	assert.ErrorIs(t, types.AddSpec(":*.x"), ErrInvalidTypeDef)

	var goDef TypeDef
	for _, def := range types.List() {
		if def.Name == "go" {
			goDef = def
		}
	}
	assert.Equal(t, []string{"*.go", "*.tmpl"}, goDef.Globs)
}

func TestTypes_ListSorted(t *testing.T) {
	t.Parallel()

	list := NewTypes().List()
	require.Len(t, list, len(defaultTypes))
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
}
