package config

import (
	"sort"
	"time"

	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/walk"
)

// FileTypes builds the file type registry: built-in types, the configured
// extra types, then the search.types and search.types_not selections.
func (c *Config) FileTypes() (*walk.Types, error) {
	types := walk.NewTypes()

	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := types.Add(name, c.Types[name]...); err != nil {
			return nil, err
		}
	}

	for _, name := range c.Search.Types {
		if err := types.Select(name); err != nil {
			return nil, err
		}
	}
	for _, name := range c.Search.TypesNot {
		if err := types.Negate(name); err != nil {
			return nil, err
		}
	}
	return types, nil
}

// ProviderConfig converts the ast_grep section to the structural engine settings.
func (c *Config) ProviderConfig() pattern.ProviderConfig {
	return pattern.ProviderConfig{
		BinaryPath:  c.AstGrep.Binary,
		AutoInstall: c.AstGrep.AutoInstall,
		Strictness:  c.AstGrep.Strictness,
		Timeout:     time.Duration(c.AstGrep.Timeout) * time.Second,
	}
}

// ToSessionConfig converts a Config to a session.Config searching paths with
// the given structural engine.
func (c *Config) ToSessionConfig(paths []string, engine pattern.Engine) (session.Config, error) {
	types, err := c.FileTypes()
	if err != nil {
		return session.Config{}, err
	}

	return session.Config{
		Walk: walk.Options{
			Paths:    paths,
			Types:    types,
			Threads:  c.Search.Threads,
			Hidden:   c.Search.Hidden,
			NoIgnore: c.Search.NoIgnore,
		},
		Finder: finder.Options{
			IgnoreCase: c.Search.IgnoreCase,
			MultiLine:  c.Search.MultiLine,
			Engine:     engine,
		},
		Prefetch: c.Search.Prefetch,
	}, nil
}
