package pattern

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script; tests using it are skipped
// on Windows.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping on Windows - uses shell scripts")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestDetectPlatform(t *testing.T) {
	t.Parallel()

	platform, err := detectPlatform()
	require.NoError(t, err)
	assert.NotEmpty(t, platform)

	switch runtime.GOOS {
	case "darwin":
		assert.Contains(t, platform, "apple-darwin")
	case "linux":
		assert.Contains(t, platform, "unknown-linux-gnu")
	case "windows":
		assert.Equal(t, "x86_64-pc-windows-msvc", platform)
	}
}

func TestConstructDownloadURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		platform string
		expected string
	}{
		{
			name:     "darwin arm64",
			platform: "aarch64-apple-darwin",
			expected: "https://github.com/ast-grep/ast-grep/releases/download/0.39.6/app-aarch64-apple-darwin.zip",
		},
		{
			name:     "linux amd64",
			platform: "x86_64-unknown-linux-gnu",
			expected: "https://github.com/ast-grep/ast-grep/releases/download/0.39.6/app-x86_64-unknown-linux-gnu.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, constructDownloadURL("0.39.6", tt.platform))
		})
	}
}

func TestGetBinaryPath(t *testing.T) {
	t.Parallel()

	path, err := getBinaryPath()
	require.NoError(t, err)

	assert.Equal(t, binaryName(), filepath.Base(path))
	assert.Contains(t, path, filepath.Join("lasr", "bin"))
}

func TestDownloadBinary(t *testing.T) {
	// Don't run in parallel - mocks global constructDownloadURL

	ctx := context.Background()
	tmpDir := t.TempDir()

	// Release archives contain both ast-grep and sg
	zipPath := filepath.Join(tmpDir, "app.zip")
	zipFile, err := os.Create(zipPath)
	require.NoError(t, err)
	zipWriter := zip.NewWriter(zipFile)
	for _, name := range []string{binaryName(), "sg"} {
		w, err := zipWriter.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("fake-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, zipWriter.Close())
	require.NoError(t, zipFile.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0.39.6/app-test-platform.zip", r.URL.Path)
		data, _ := os.ReadFile(zipPath)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}))
	defer server.Close()

	original := constructDownloadURL
	defer func() { constructDownloadURL = original }()
	constructDownloadURL = func(version, platform string) string {
		return server.URL + "/" + version + "/app-" + platform + ".zip"
	}

	destPath := filepath.Join(tmpDir, "bin", binaryName())
	require.NoError(t, downloadBinary(ctx, "0.39.6", "test-platform", destPath))

	content, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "fake-"+binaryName(), string(content))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(destPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestDownloadBinary_FailsOnHTTPError(t *testing.T) {
	// Don't run in parallel - mocks global constructDownloadURL

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	original := constructDownloadURL
	defer func() { constructDownloadURL = original }()
	constructDownloadURL = func(version, platform string) string {
		return server.URL + "/missing.zip"
	}

	destPath := filepath.Join(t.TempDir(), binaryName())
	err := downloadBinary(context.Background(), AstGrepVersion, "any", destPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.NoFileExists(t, destPath)
}

func TestExtractBinaryFromZip_Missing(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := filepath.Join(tmpDir, "empty.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	_, err = w.Create("README.md")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	err = extractBinaryFromZip(zipPath, filepath.Join(tmpDir, binaryName()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in zip archive")
}

func TestVerifyBinary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid binary", func(t *testing.T) {
		t.Parallel()
		path := writeScript(t, t.TempDir(), "ast-grep", "echo 'ast-grep 0.39.6'\n")
		assert.NoError(t, verifyBinary(ctx, path))
	})

	t.Run("invalid binary output", func(t *testing.T) {
		t.Parallel()
		path := writeScript(t, t.TempDir(), "fake-binary", "echo 'wrong-tool 1.0.0'\n")
		err := verifyBinary(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid binary output")
	})

	t.Run("binary not found", func(t *testing.T) {
		t.Parallel()
		err := verifyBinary(ctx, filepath.Join(t.TempDir(), "nonexistent"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verification failed")
	})
}

func TestVerifyBinary_ContextCancellation(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "slow-binary", "sleep 100\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, verifyBinary(ctx, path))
}
