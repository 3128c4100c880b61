package pattern

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// AstGrepVersion is the pinned version of ast-grep downloaded when no binary
// is available locally.
const AstGrepVersion = "0.39.6"

// detectPlatform returns the Rust target triple used in ast-grep release
// asset names.
// Declared as a variable to allow mocking in tests.
var detectPlatform = func() (string, error) {
	goos := runtime.GOOS
	goarch := runtime.GOARCH

	switch goos {
	case "darwin":
		if goarch == "arm64" {
			return "aarch64-apple-darwin", nil
		} else if goarch == "amd64" {
			return "x86_64-apple-darwin", nil
		}
	case "linux":
		if goarch == "arm64" {
			return "aarch64-unknown-linux-gnu", nil
		} else if goarch == "amd64" {
			return "x86_64-unknown-linux-gnu", nil
		}
	case "windows":
		if goarch == "amd64" {
			return "x86_64-pc-windows-msvc", nil
		}
	}

	return "", errors.Errorf("unsupported platform: %s/%s (ast-grep not available for this platform)",
		goos, goarch)
}

// constructDownloadURL builds the GitHub release URL for the ast-grep archive.
// Declared as a variable to allow mocking in tests.
var constructDownloadURL = func(version, platform string) string {
	return "https://github.com/ast-grep/ast-grep/releases/download/" + version + "/app-" + platform + ".zip"
}

// getBinaryPath returns the cache path where a downloaded ast-grep is stored.
// Declared as a variable to allow mocking in tests.
var getBinaryPath = func() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Errorf("failed to get user cache directory: %w", err)
	}

	binaryPath := filepath.Join(cacheDir, "lasr", "bin", binaryName())
	return binaryPath, nil
}

// lookPath finds a binary on $PATH.
// Declared as a variable to allow mocking in tests.
var lookPath = exec.LookPath

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ast-grep.exe"
	}
	return "ast-grep"
}

// downloadBinary downloads the ast-grep release archive, extracts the binary
// and moves it to destPath.
// Declared as a variable to allow mocking in tests.
var downloadBinary = func(ctx context.Context, version, platform, destPath string) error {
	url := constructDownloadURL(version, platform)

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Errorf("failed to create bin directory: %w", err)
	}

	tmpZip, err := os.CreateTemp(destDir, "ast-grep-*.zip")
	if err != nil {
		return errors.Errorf("failed to create temp file: %w", err)
	}
	tmpZipPath := tmpZip.Name()
	defer os.Remove(tmpZipPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download failed with status %d: %s", resp.StatusCode, resp.Status)
	}

	if _, err := io.Copy(tmpZip, resp.Body); err != nil {
		tmpZip.Close()
		return errors.Errorf("failed to write download: %w", err)
	}
	tmpZip.Close()

	if err := extractBinaryFromZip(tmpZipPath, destPath); err != nil {
		return errors.Errorf("failed to extract binary: %w", err)
	}

	return nil
}

// extractBinaryFromZip extracts the ast-grep/ast-grep.exe binary from the zip archive.
func extractBinaryFromZip(zipPath, destPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return errors.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	name := binaryName()
	for _, f := range r.File {
		if filepath.Base(f.Name) != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return errors.Errorf("failed to open file in zip: %w", err)
		}
		defer rc.Close()

		// Write to temp file first
		tmpBinary, err := os.CreateTemp(filepath.Dir(destPath), "sg-*.tmp")
		if err != nil {
			return errors.Errorf("failed to create temp binary: %w", err)
		}
		tmpPath := tmpBinary.Name()
		defer os.Remove(tmpPath)

		if _, err := io.Copy(tmpBinary, rc); err != nil {
			tmpBinary.Close()
			return errors.Errorf("failed to write binary: %w", err)
		}
		tmpBinary.Close()

		if runtime.GOOS != "windows" {
			if err := os.Chmod(tmpPath, 0755); err != nil {
				return errors.Errorf("failed to make binary executable: %w", err)
			}
		}

		// Atomic rename
		if err := os.Rename(tmpPath, destPath); err != nil {
			return errors.Errorf("failed to rename binary: %w", err)
		}
		return nil
	}

	return errors.Errorf("binary %s not found in zip archive", name)
}

// verifyBinary checks if the ast-grep binary is valid by running --version.
func verifyBinary(ctx context.Context, binaryPath string) error {
	cmd := exec.CommandContext(ctx, binaryPath, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Errorf("binary verification failed: %w", err)
	}

	// Expected format: "ast-grep 0.39.6"
	outputStr := strings.TrimSpace(string(output))
	if !strings.Contains(outputStr, "ast-grep") {
		return errors.Errorf("invalid binary output: %s", outputStr)
	}

	return nil
}
