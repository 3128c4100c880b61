package pattern

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeAstGrep = `if [ "$1" = "--version" ]; then echo 'ast-grep 0.39.6'; exit 0; fi
cat > /dev/null
echo '[{"text":"foo(1)","range":{"byteOffset":{"start":0,"end":6},"start":{"line":0,"column":0},"end":{"line":0,"column":6}},"metaVariables":{"single":{"FN":{"text":"foo","range":{"byteOffset":{"start":0,"end":3},"start":{"line":0,"column":0},"end":{"line":0,"column":3}}}},"multi":{}}}]'
`

// mockDiscovery replaces the binary discovery hooks for one test.
func mockDiscovery(t *testing.T, path string, onPath bool) {
	t.Helper()
	origGet, origLook := getBinaryPath, lookPath
	t.Cleanup(func() {
		getBinaryPath = origGet
		lookPath = origLook
	})
	getBinaryPath = func() (string, error) { return path, nil }
	lookPath = func(name string) (string, error) {
		if onPath {
			return path, nil
		}
		return "", errors.New("not found")
	}
}

func TestNewAstGrepProvider_Defaults(t *testing.T) {
	t.Parallel()

	provider := NewAstGrepProvider(ProviderConfig{})
	require.NotNil(t, provider)
	assert.False(t, provider.IsInitialized())
	assert.Empty(t, provider.BinaryPath())
	assert.Equal(t, DefaultExecutionTimeout, provider.cfg.Timeout)
	assert.Equal(t, DefaultStrictness, provider.cfg.Strictness)
}

func TestAstGrepProvider_ConfiguredBinary(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "ast-grep", fakeAstGrep)

	provider := NewAstGrepProvider(ProviderConfig{BinaryPath: path})
	require.NoError(t, provider.ensureBinaryInstalled(context.Background()))
	assert.True(t, provider.IsInitialized())
	assert.Equal(t, path, provider.BinaryPath())
}

func TestAstGrepProvider_ConfiguredBinaryInvalid(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "not-ast-grep", "echo 'something else'\n")

	provider := NewAstGrepProvider(ProviderConfig{BinaryPath: path})
	err := provider.ensureBinaryInstalled(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinaryUnavailable)

	// The failure is remembered
	assert.Equal(t, err, provider.ensureBinaryInstalled(context.Background()))
}

func TestAstGrepProvider_FromPath(t *testing.T) {
	// Don't run in parallel - mocks global discovery hooks

	path := writeScript(t, t.TempDir(), "ast-grep", fakeAstGrep)
	mockDiscovery(t, path, true)

	provider := NewAstGrepProvider(ProviderConfig{})
	require.NoError(t, provider.ensureBinaryInstalled(context.Background()))
	assert.Equal(t, path, provider.BinaryPath())
}

func TestAstGrepProvider_NoBinaryWithoutAutoInstall(t *testing.T) {
	// Don't run in parallel - mocks global discovery hooks

	mockDiscovery(t, filepath.Join(t.TempDir(), "missing", "ast-grep"), false)

	origDownload := downloadBinary
	defer func() { downloadBinary = origDownload }()
	downloadBinary = func(ctx context.Context, version, platform, destPath string) error {
		t.Fatal("download must not be attempted")
		return nil
	}

	provider := NewAstGrepProvider(ProviderConfig{AutoInstall: false})
	err := provider.ensureBinaryInstalled(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBinaryUnavailable)
	assert.False(t, provider.IsInitialized())
}

func TestAstGrepProvider_AutoInstall(t *testing.T) {
	// Don't run in parallel - mocks global discovery hooks

	dest := filepath.Join(t.TempDir(), "bin", "ast-grep")
	mockDiscovery(t, dest, false)

	origDownload := downloadBinary
	defer func() { downloadBinary = origDownload }()
	calls := 0
	downloadBinary = func(ctx context.Context, version, platform, destPath string) error {
		calls++
		assert.Equal(t, AstGrepVersion, version)
		assert.Equal(t, dest, destPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(destPath), 0755))
		writeScript(t, filepath.Dir(destPath), filepath.Base(destPath), fakeAstGrep)
		return nil
	}

	provider := NewAstGrepProvider(ProviderConfig{AutoInstall: true})
	ctx := context.Background()
	require.NoError(t, provider.ensureBinaryInstalled(ctx))
	require.NoError(t, provider.ensureBinaryInstalled(ctx))

	assert.Equal(t, 1, calls)
	assert.Equal(t, dest, provider.BinaryPath())
}

func TestAstGrepProvider_DownloadFailureRetried(t *testing.T) {
	// Don't run in parallel - mocks global discovery hooks

	dest := filepath.Join(t.TempDir(), "bin", "ast-grep")
	mockDiscovery(t, dest, false)

	origDownload := downloadBinary
	defer func() { downloadBinary = origDownload }()
	calls := 0
	downloadBinary = func(ctx context.Context, version, platform, destPath string) error {
		calls++
		return errors.New("network unreachable")
	}

	provider := NewAstGrepProvider(ProviderConfig{AutoInstall: true})
	ctx := context.Background()
	require.Error(t, provider.ensureBinaryInstalled(ctx))
	require.Error(t, provider.ensureBinaryInstalled(ctx))
	assert.Equal(t, 2, calls)
}

func TestAstGrepProvider_FindAll(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "ast-grep", fakeAstGrep)
	provider := NewAstGrepProvider(ProviderConfig{BinaryPath: path})

	c, err := Compile("$FN($$$ARGS)", LangPython)
	require.NoError(t, err)

	matches, err := provider.FindAll(context.Background(), []byte("foo(1)\n"), c)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].StartLine)
	assert.Equal(t, "foo(1)", matches[0].Text)
	assert.Equal(t, "foo", matches[0].Single["FN"])
}

func TestAstGrepProvider_FindAllInvalidStrictness(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "ast-grep", fakeAstGrep)
	provider := NewAstGrepProvider(ProviderConfig{BinaryPath: path, Strictness: "loose"})

	_, err := provider.FindAll(context.Background(), []byte("x"), Compiled{Pattern: "x", Language: LangPython})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strictness")
}
