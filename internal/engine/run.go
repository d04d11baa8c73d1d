package engine

// run.go - run orchestration: fan out over a worker pool, reduce once

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forgelint/forgelint/pkg/check"
)

// Run checks every discovered file and returns the aggregated report.
// The returned error covers run-level failures such as unreadable files
// or cancellation; rule findings and per-file diagnostics are in the
// report itself.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	report := &Report{
		ID:     uuid.New().String(),
		Root:   e.root,
		ByRule: make(map[string]int),
	}

	discovered, err := e.Discover()
	if err != nil {
		return nil, err
	}

	// Globally ignored files are dropped before they are ever read.
	var files []string
	for _, f := range discovered {
		if e.overrides.IsFileIgnored(f) {
			continue
		}
		files = append(files, f)
	}
	report.Ignored = len(discovered) - len(files)

	e.logger.Info("checking files",
		"run_id", report.ID,
		"count", len(files),
		"ignored", report.Ignored,
		"workers", e.workers)

	// Each worker writes only its own slot; the single reduction below
	// happens after Wait.
	results := make([]*check.Result, len(files))
	cached := make([]bool, len(files))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)

	for i, path := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			res, hit, err := e.checkFile(path)
			if err != nil {
				return err
			}
			results[i] = res
			cached[i] = hit
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		report.add(res)
		if cached[i] {
			report.CacheHits++
		}
	}
	report.finish()

	// Globs are matched against the full discovered tree, so a glob
	// whose only effect was ignoring files does not warn.
	for _, glob := range e.overrides.UnmatchedGlobs(discovered) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("override glob %q matches no checked file", glob))
	}

	e.pruneCache(discovered)

	report.Files = len(files)
	report.Duration = time.Since(start)

	e.logger.Info("run completed",
		"run_id", report.ID,
		"files", report.Files,
		"cache_hits", report.CacheHits,
		"findings", len(report.Findings),
		"errors", len(report.Errors),
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

// checkFile reads, classifies and checks a single file, consulting the
// cache first. The bool result reports a cache hit.
func (e *Engine) checkFile(path string) (*check.Result, bool, error) {
	content, err := os.ReadFile(filepath.Join(e.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	hash := computeHash(content)

	if e.store != nil {
		findings, ok, err := e.store.Get(path, hash, e.rulesHash)
		if err != nil {
			e.logger.Warn("cache lookup failed", "path", path, "error", err)
		} else if ok {
			e.logger.Debug("replaying cached result", "path", path, "findings", len(findings))
			return &check.Result{
				Path:     path,
				Kind:     check.Classify(path, e.paths),
				Findings: findings,
			}, true, nil
		}
	}

	res := e.analyzer.CheckSource(path, string(content))

	// Results with structural errors are never cached, so parse and
	// directive diagnostics resurface on every run.
	if e.store != nil && res.ParseErr == nil && res.DirectiveErr == nil {
		if err := e.store.Put(path, hash, e.rulesHash, res.Findings); err != nil {
			e.logger.Warn("cache store failed", "path", path, "error", err)
		}
	}

	return res, false, nil
}

// pruneCache drops cache entries for files no longer in the tree.
func (e *Engine) pruneCache(discovered []string) {
	if e.store == nil {
		return
	}
	keep := make(map[string]bool, len(discovered))
	for _, f := range discovered {
		keep[f] = true
	}
	if _, err := e.store.Prune(keep); err != nil {
		e.logger.Warn("cache prune failed", "error", err)
	}
}
