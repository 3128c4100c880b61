package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

// ProjectFile is the per-project config file name, looked up in the search root.
const ProjectFile = ".lasr.yaml"

// userConfigDir returns the user configuration directory.
// Declared as a variable to allow mocking in tests.
var userConfigDir = os.UserConfigDir

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user file → project file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader for the search root rootDir. A non-empty
// configFile is read instead of the user and project files and must exist.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads and validates the configuration.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	v.SetEnvPrefix("LASR")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., LASR_SEARCH_THREADS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	files, err := l.files()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// files returns the config files to merge, lowest priority first.
func (l *loader) files() ([]string, error) {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, errors.Errorf("failed to read config file: %w", err)
		}
		return []string{l.configFile}, nil
	}

	var candidates []string
	if dir, err := userConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "lasr", "config.yaml"),
			filepath.Join(dir, "lasr", "config.yml"),
		)
	}
	if l.rootDir != "" {
		candidates = append(candidates, filepath.Join(l.rootDir, ProjectFile))
	}

	var files []string
	for _, path := range candidates {
		// Missing files are acceptable - we'll use defaults + env vars
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			files = append(files, path)
		}
	}
	return files, nil
}

// bindEnvVars binds environment variables for every scalar setting.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("log_level")

	// Search configuration
	v.BindEnv("search.ignore_case")
	v.BindEnv("search.multi_line")
	v.BindEnv("search.threads")
	v.BindEnv("search.types")
	v.BindEnv("search.types_not")
	v.BindEnv("search.hidden")
	v.BindEnv("search.no_ignore")
	v.BindEnv("search.prefetch")

	// ast-grep configuration
	v.BindEnv("ast_grep.binary")
	v.BindEnv("ast_grep.auto_install")
	v.BindEnv("ast_grep.strictness")
	v.BindEnv("ast_grep.timeout")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log_level", defaults.LogLevel)

	// Search defaults
	v.SetDefault("search.ignore_case", defaults.Search.IgnoreCase)
	v.SetDefault("search.multi_line", defaults.Search.MultiLine)
	v.SetDefault("search.threads", defaults.Search.Threads)
	v.SetDefault("search.types", defaults.Search.Types)
	v.SetDefault("search.types_not", defaults.Search.TypesNot)
	v.SetDefault("search.hidden", defaults.Search.Hidden)
	v.SetDefault("search.no_ignore", defaults.Search.NoIgnore)
	v.SetDefault("search.prefetch", defaults.Search.Prefetch)

	// Theme defaults
	setStyleDefaults(v, "theme.base", defaults.Theme.Base)
	setStyleDefaults(v, "theme.find", defaults.Theme.Find)
	setStyleDefaults(v, "theme.replace", defaults.Theme.Replace)

	// ast-grep defaults
	v.SetDefault("ast_grep.binary", defaults.AstGrep.Binary)
	v.SetDefault("ast_grep.auto_install", defaults.AstGrep.AutoInstall)
	v.SetDefault("ast_grep.strictness", defaults.AstGrep.Strictness)
	v.SetDefault("ast_grep.timeout", defaults.AstGrep.Timeout)
}

func setStyleDefaults(v *viper.Viper, key string, s StyleConfig) {
	v.SetDefault(key+".fg", s.Fg)
	v.SetDefault(key+".bg", s.Bg)
	v.SetDefault(key+".bold", s.Bold)
	v.SetDefault(key+".italic", s.Italic)
	v.SetDefault(key+".underline", s.Underline)
	v.SetDefault(key+".strikethrough", s.StrikeThrough)
}

// LoadConfig is a convenience function that loads config for the current
// working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, "").Load()
}
