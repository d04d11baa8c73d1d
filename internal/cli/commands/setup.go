package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/forgelint/forgelint/internal/cli/config"
	"github.com/forgelint/forgelint/internal/cli/output"
	foundry "github.com/forgelint/forgelint/internal/config"
	"github.com/forgelint/forgelint/internal/engine"
	"github.com/forgelint/forgelint/internal/state"
	"github.com/forgelint/forgelint/pkg/check"
	"github.com/spf13/cobra"
)

// ErrChecksFailed reports that a run completed and found rule violations
// or file errors. The CLI maps it to exit code 1 without printing an
// extra error line, since the report has already been rendered.
var ErrChecksFailed = errors.New("checks failed")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
// Commands that run checks build their engine separately via createEngine,
// after applying any per-invocation root override.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	paths := check.DefaultPaths()
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	jobs, _ := strconv.Atoi(os.Getenv("FORGELINT_JOBS"))

	return &config.Config{
		SrcDir:       getEnvOrDefault("FORGELINT_SRC_DIR", paths.Src),
		ScriptDir:    getEnvOrDefault("FORGELINT_SCRIPT_DIR", paths.Script),
		TestDir:      getEnvOrDefault("FORGELINT_TEST_DIR", paths.Test),
		Overrides:    os.Getenv("FORGELINT_OVERRIDES"),
		CachePath:    getEnvOrDefault("FORGELINT_CACHE_PATH", config.DefaultCacheFile),
		NoCache:      os.Getenv("FORGELINT_NO_CACHE") == "true",
		Jobs:         jobs,
		Verbose:      os.Getenv("FORGELINT_VERBOSE") == "true",
		OutputFormat: os.Getenv("FORGELINT_OUTPUT"),
		ProjectRoot:  root,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// applyProjectLayout re-reads foundry.toml after a positional path moved
// the project root, so the target project's own layout applies. Directory
// flags given on the command line still win, and a malformed file keeps
// the current layout.
func applyProjectLayout(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) {
	if _, err := os.Stat(filepath.Join(cfg.ProjectRoot, foundry.FoundryFileName)); err != nil {
		return
	}
	project, err := foundry.Load(cfg.ProjectRoot)
	if err != nil {
		logger.Warn("ignoring malformed foundry.toml", "error", err)
		return
	}
	if f := cmd.Flag("src-dir"); f == nil || !f.Changed {
		cfg.SrcDir = project.Paths.Src
	}
	if f := cmd.Flag("script-dir"); f == nil || !f.Changed {
		cfg.ScriptDir = project.Paths.Script
	}
	if f := cmd.Flag("test-dir"); f == nil || !f.Changed {
		cfg.TestDir = project.Paths.Test
	}
}

// createEngine wires the suppression overrides, the findings cache, and
// the worker pool into an engine rooted at cfg.ProjectRoot.
func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	overrides, err := loadOverrides(cfg)
	if err != nil {
		return nil, err
	}

	engineCfg := engine.Config{
		Root:      cfg.ProjectRoot,
		Paths:     cfg.CheckPaths(),
		Overrides: overrides,
		Workers:   cfg.Jobs,
		Logger:    logger,
	}

	if !cfg.NoCache {
		store, err := openCacheStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		engineCfg.Store = store
	}

	return engine.New(engineCfg)
}

// loadOverrides reads the suppression config. An explicitly configured
// path must load, while the conventional project-root .forgelint may be
// absent.
func loadOverrides(cfg *config.Config) (*check.Overrides, error) {
	path, explicit := cfg.OverridesFile()
	if explicit {
		return check.LoadOverrides(path)
	}
	return check.LoadProjectOverrides(cfg.ProjectRoot)
}

// openCacheStore opens the SQLite findings cache, creating its parent
// directory and applying pending schema migrations.
func openCacheStore(cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	cacheFile := cfg.CacheFile()

	cacheDir := filepath.Dir(cacheFile)
	if cacheDir != "." && cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cacheFile); err != nil {
		return nil, fmt.Errorf("failed to open findings cache %s: %w", cacheFile, err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate findings cache: %w", err)
	}
	return store, nil
}
