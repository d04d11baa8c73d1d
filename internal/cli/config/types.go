// Package config provides configuration management for the forgelint CLI.
//
// Settings are merged from five layers with rising precedence: built-in
// defaults, the foundry.toml layout, a forgelint.yaml file at the project
// root, FORGELINT_* environment variables, and command-line flags. The
// suppression config (.forgelint) is a separate artifact parsed by
// pkg/check; this package only decides where to find it.
package config

import (
	"path/filepath"

	"github.com/forgelint/forgelint/pkg/check"
)

// Config holds all CLI configuration options. Directory and file settings
// are kept as written (usually project-relative); the resolver methods
// below turn them into usable paths.
type Config struct {
	SrcDir       string `koanf:"src_dir"`
	ScriptDir    string `koanf:"script_dir"`
	TestDir      string `koanf:"test_dir"`
	Overrides    string `koanf:"overrides"`
	CachePath    string `koanf:"cache_path"`
	NoCache      bool   `koanf:"no_cache"`
	Jobs         int    `koanf:"jobs"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the absolute directory every relative setting above
	// resolves against. It is inferred at load time, never read from the
	// config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultCacheFile = ".forgelint-cache/findings.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// CheckPaths returns the configured source roots as checker paths.
func (c *Config) CheckPaths() check.Paths {
	return check.Paths{
		Src:    c.SrcDir,
		Script: c.ScriptDir,
		Test:   c.TestDir,
	}
}

// CacheFile returns the findings cache path resolved against the project
// root.
func (c *Config) CacheFile() string {
	return resolvePathRelativeTo(c.CachePath, c.ProjectRoot)
}

// OverridesFile returns the suppression config path and whether it was
// set explicitly. An explicit path must exist; the default project-root
// .forgelint is optional.
func (c *Config) OverridesFile() (string, bool) {
	if c.Overrides == "" {
		return filepath.Join(c.ProjectRoot, check.OverridesFileName), false
	}
	return resolvePathRelativeTo(c.Overrides, c.ProjectRoot), true
}
