package pattern

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrBinaryUnavailable indicates no usable ast-grep binary could be found or
// installed.
var ErrBinaryUnavailable = errors.Base("ast-grep binary not available")

// ProviderConfig configures how the ast-grep binary is located and run.
type ProviderConfig struct {
	BinaryPath  string        // Explicit binary; skips discovery when set
	AutoInstall bool          // Download a pinned release when nothing is found
	Strictness  string        // ast-grep --strictness (default: smart)
	Timeout     time.Duration // Per-document execution timeout
}

// AstGrepProvider manages the ast-grep binary and implements Engine on top of
// it. It uses lazy initialization to locate, download and verify the binary
// only when first needed.
type AstGrepProvider struct {
	cfg         ProviderConfig
	binaryPath  string
	version     string
	initialized bool
	initErr     error
	mu          sync.Mutex
}

// NewAstGrepProvider creates a new ast-grep provider with lazy initialization.
func NewAstGrepProvider(cfg ProviderConfig) *AstGrepProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultExecutionTimeout
	}
	if cfg.Strictness == "" {
		cfg.Strictness = DefaultStrictness
	}
	return &AstGrepProvider{
		cfg:     cfg,
		version: AstGrepVersion,
	}
}

// ensureBinaryInstalled resolves a working binary, in order: the configured
// path, ast-grep or sg on $PATH, the cached download, a fresh download.
// Thread-safe: concurrent walker workers resolve the binary only once, and a
// failure is remembered so a walk does not retry per file.
func (p *AstGrepProvider) ensureBinaryInstalled(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if p.initErr != nil {
		return p.initErr
	}

	logger := zerolog.Ctx(ctx)

	if p.cfg.BinaryPath != "" {
		if err := verifyBinary(ctx, p.cfg.BinaryPath); err != nil {
			p.initErr = errors.Errorf("%w: %s: %s", ErrBinaryUnavailable, p.cfg.BinaryPath, err.Error())
			return p.initErr
		}
		p.markReady(p.cfg.BinaryPath)
		return nil
	}

	for _, name := range []string{"ast-grep", "sg"} {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		if err := verifyBinary(ctx, path); err == nil {
			logger.Debug().Str("path", path).Msg("using ast-grep from PATH")
			p.markReady(path)
			return nil
		}
	}

	binaryPath, err := getBinaryPath()
	if err != nil {
		p.initErr = errors.Errorf("failed to get binary path: %w", err)
		return p.initErr
	}

	if _, err := os.Stat(binaryPath); err == nil {
		if err := verifyBinary(ctx, binaryPath); err == nil {
			p.markReady(binaryPath)
			return nil
		}

		// Binary exists but is invalid - remove it and re-download
		logger.Warn().Str("path", binaryPath).Msg("existing ast-grep binary is invalid, removing")
		if err := os.Remove(binaryPath); err != nil {
			logger.Warn().Err(err).Msg("failed to remove invalid binary")
		}
	}

	if !p.cfg.AutoInstall {
		p.initErr = errors.Errorf("%w: install ast-grep or enable ast_grep.auto_install", ErrBinaryUnavailable)
		return p.initErr
	}

	logger.Info().Str("version", p.version).Msg("downloading ast-grep")

	platform, err := detectPlatform()
	if err != nil {
		p.initErr = errors.Errorf("failed to detect platform: %w", err)
		return p.initErr
	}

	if err := downloadBinary(ctx, p.version, platform, binaryPath); err != nil {
		// Not remembered: a later walk may retry the download.
		return errors.Errorf("failed to download ast-grep: %w", err)
	}

	if err := verifyBinary(ctx, binaryPath); err != nil {
		p.initErr = errors.Errorf("downloaded binary verification failed: %w", err)
		return p.initErr
	}

	logger.Info().Str("path", binaryPath).Msg("ast-grep installed")
	p.markReady(binaryPath)
	return nil
}

func (p *AstGrepProvider) markReady(path string) {
	p.binaryPath = path
	p.initialized = true
}

// BinaryPath returns the path to the ast-grep binary.
// Returns empty string if not yet initialized.
func (p *AstGrepProvider) BinaryPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binaryPath
}

// IsInitialized returns whether the provider has been initialized.
func (p *AstGrepProvider) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// FindAll implements Engine.
func (p *AstGrepProvider) FindAll(ctx context.Context, src []byte, c Compiled) ([]Match, error) {
	if err := p.ensureBinaryInstalled(ctx); err != nil {
		return nil, err
	}

	args, err := BuildFindArgs(c, p.cfg.Strictness)
	if err != nil {
		return nil, err
	}

	out, err := runAstGrep(ctx, p.BinaryPath(), args, src, p.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	raw, err := parseAstGrepOutput(out)
	if err != nil {
		return nil, errors.Errorf("failed to parse output: %w", err)
	}
	return toMatches(raw, src), nil
}

// ReplaceAll implements Engine.
func (p *AstGrepProvider) ReplaceAll(ctx context.Context, src []byte, c Compiled, replacement string) ([]Edit, error) {
	if err := p.ensureBinaryInstalled(ctx); err != nil {
		return nil, err
	}

	args, err := BuildReplaceArgs(c, p.cfg.Strictness, replacement)
	if err != nil {
		return nil, err
	}

	out, err := runAstGrep(ctx, p.BinaryPath(), args, src, p.cfg.Timeout)
	if err != nil {
		return nil, err
	}

	raw, err := parseAstGrepOutput(out)
	if err != nil {
		return nil, errors.Errorf("failed to parse output: %w", err)
	}
	return toEdits(raw), nil
}
