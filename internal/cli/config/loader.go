package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	foundry "github.com/forgelint/forgelint/internal/config"
	"github.com/forgelint/forgelint/pkg/check"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for
// a project root.
const maxUpwardSearchLevels = 10

// settingsFileNames are the recognized tool settings files, checked in order.
var settingsFileNames = []string{"forgelint.yaml", "forgelint.yml"}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
	foundryWarning string  // Set when foundry.toml exists but cannot be parsed
)

// settingsFileIn returns the settings file inside dir, if one exists.
func settingsFileIn(dir string) string {
	for _, name := range settingsFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// isProjectRoot checks whether a directory looks like a Foundry project
// root: it carries a foundry.toml, a forgelint settings file, or a
// .forgelint suppression config.
func isProjectRoot(dir string) bool {
	anchors := append([]string{"foundry.toml", check.OverridesFileName}, settingsFileNames...)
	for _, name := range anchors {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a project root
// anchor. Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if isProjectRoot(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --root flag
//  2. Infer from --src-dir (parent if anchored or named "src")
//  3. Search upward from CWD for a foundry.toml or forgelint config
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	// 1. Check explicit --root
	if flags != nil {
		if root, _ := flags.GetString("root"); root != "" && flags.Changed("root") {
			abs, err := filepath.Abs(root)
			if err == nil {
				return abs
			}
			return filepath.Clean(root)
		}
	}

	// 2. Infer from --src-dir
	if flags != nil {
		if srcDir, _ := flags.GetString("src-dir"); srcDir != "" && flags.Changed("src-dir") {
			absSrc, err := filepath.Abs(srcDir)
			if err == nil {
				parent := filepath.Dir(absSrc)

				// If parent carries a project anchor, it's the root
				if isProjectRoot(parent) {
					return parent
				}

				// If folder matches Foundry's conventional name, assume
				// parent is the root
				if filepath.Base(absSrc) == check.DefaultPaths().Src {
					return parent
				}
			}
		}
	}

	// 3. Search upward from CWD
	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	// 4. Default to CWD
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
	foundryWarning = ""
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// Infer project root from flags before loading config. This enables
	// the anchor pattern where --src-dir fixtures/src implies the project
	// root is fixtures/.
	projectRoot := inferProjectRoot(flags)

	// Track file paths that were explicitly provided as flags (relative to
	// CWD, not the project root). These are converted to absolute paths up
	// front so the resolver methods leave them alone.
	var flagOverrides, flagCache string
	if flags != nil {
		if flags.Changed("config") {
			if v, _ := flags.GetString("config"); v != "" {
				flagOverrides, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("cache") {
			if v, _ := flags.GetString("cache"); v != "" {
				flagCache, _ = filepath.Abs(v)
			}
		}
	}

	// 1. Load defaults
	defaults := check.DefaultPaths()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"src_dir":    defaults.Src,
		"script_dir": defaults.Script,
		"test_dir":   defaults.Test,
		"overrides":  "",
		"cache_path": DefaultCacheFile,
		"no_cache":   false,
		"jobs":       0,
		"verbose":    false,
		"output":     DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Layer the Foundry layout from foundry.toml over the defaults.
	// The settings file, env vars and flags can still override it. A
	// malformed foundry.toml keeps the standard layout and is surfaced
	// as a warning, not an error.
	foundryWarning = ""
	if project, err := foundry.Load(projectRoot); err != nil {
		foundryWarning = err.Error()
	} else if err := k.Load(confmap.Provider(map[string]interface{}{
		"src_dir":    project.Paths.Src,
		"script_dir": project.Paths.Script,
		"test_dir":   project.Paths.Test,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load foundry.toml layout: %w", err)
	}

	// 3. Load the settings file from the project root, if present
	configFileUsed = settingsFileIn(projectRoot)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 4. Load environment variables (FORGELINT_ prefix)
	// Transform: FORGELINT_SRC_DIR -> src_dir
	if err := k.Load(env.Provider("FORGELINT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FORGELINT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: the CLI uses --config for the .forgelint
			// suppression file and --cache for the findings cache; the
			// config keys spell out what each path is.
			switch key {
			case "config":
				return "overrides", posflag.FlagVal(flags, f)
			case "cache":
				return "cache_path", posflag.FlagVal(flags, f)
			case "root":
				// Consumed by inferProjectRoot, not a config key.
				return "", nil
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 7. Set the project root and pin down flag-provided paths. Settings
	// from the file or defaults stay relative; the resolver methods join
	// them against the root on demand.
	cfg.ProjectRoot = projectRoot
	if flagOverrides != "" {
		cfg.Overrides = flagOverrides
	}
	if flagCache != "" {
		cfg.CachePath = flagCache
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetFoundryWarning returns the parse failure recorded for foundry.toml
// during the last LoadConfig call, or "" when the file was absent or valid.
func GetFoundryWarning() string {
	return foundryWarning
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
