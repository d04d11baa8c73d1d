package engine

// discovery.go - source tree discovery under the configured roots

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
)

// Discover returns the project-relative paths of all Solidity sources
// under the configured roots, sorted lexically. Globally ignored files
// are still listed; Run drops them before reading, so that ignore globs
// can be matched against the full tree.
func (e *Engine) Discover() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range e.discoveryRoots() {
		dir := filepath.Join(e.root, filepath.FromSlash(root))

		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			e.logger.Debug("skipping missing source root", "dir", root)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat source root %s: %w", root, err)
		}
		if !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".sol") {
				return nil
			}

			rel, err := filepath.Rel(e.root, path)
			if err != nil {
				return err
			}
			relPath := check.NormalizePath(rel)

			// Roots may nest; count each file once.
			if seen[relPath] {
				return nil
			}
			seen[relPath] = true

			files = append(files, relPath)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan source root %s: %w", root, err)
		}
	}

	sort.Strings(files)

	e.logger.Debug("discovered sources", "count", len(files))

	return files, nil
}

// discoveryRoots returns the distinct non-empty source roots.
func (e *Engine) discoveryRoots() []string {
	var roots []string
	for _, c := range []string{e.paths.Src, e.paths.Script, e.paths.Test} {
		c = check.NormalizePath(c)
		if c == "" {
			continue
		}
		dup := false
		for _, r := range roots {
			if r == c {
				dup = true
				break
			}
		}
		if !dup {
			roots = append(roots, c)
		}
	}
	return roots
}
