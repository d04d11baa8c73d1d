// Package engine orchestrates check runs. It discovers Solidity sources
// under the configured roots, fans the files out to a worker pool, and
// reduces the per-file results into a single report.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/forgelint/forgelint/internal/state"
	"github.com/forgelint/forgelint/pkg/check"
	_ "github.com/forgelint/forgelint/pkg/check/rules" // register the rule set
)

// Engine coordinates check runs over one project tree.
type Engine struct {
	root      string
	paths     check.Paths
	overrides *check.Overrides
	analyzer  *check.Analyzer
	store     state.Store
	rulesHash string
	workers   int
	logger    *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Root is the project root directory. Reported file paths are
	// relative to it.
	Root string
	// Paths are the source roots used for discovery and file
	// classification, usually read from foundry.toml.
	Paths check.Paths
	// Overrides is the suppression config from .forgelint (optional).
	Overrides *check.Overrides
	// Store caches per-file results between runs (optional). The engine
	// takes ownership and closes it.
	Store state.Store
	// Workers caps the number of files checked concurrently.
	// Defaults to GOMAXPROCS.
	Workers int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine rooted at cfg.Root.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	paths := cfg.Paths
	if paths == (check.Paths{}) {
		paths = check.DefaultPaths()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Debug("initializing engine",
		"root", absRoot,
		"src", paths.Src, "script", paths.Script, "test", paths.Test,
		"workers", workers)

	return &Engine{
		root:      absRoot,
		paths:     paths,
		overrides: cfg.Overrides,
		analyzer:  check.NewAnalyzer(paths, cfg.Overrides),
		store:     cfg.Store,
		rulesHash: rulesFingerprint(),
		workers:   workers,
		logger:    logger,
	}, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("failed to close cache store: %w", err)
		}
	}
	return nil
}

// Root returns the absolute project root.
func (e *Engine) Root() string {
	return e.root
}

// Paths returns the configured source roots.
func (e *Engine) Paths() check.Paths {
	return e.paths
}

// computeHash generates a SHA256 hash of content.
func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// rulesFingerprint hashes the registered rule roster. Cached results
// from a different roster are treated as misses.
func rulesFingerprint() string {
	return computeHash([]byte(strings.Join(check.IDs(), ",")))
}
