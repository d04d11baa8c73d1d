package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/forgelint/forgelint/pkg/check"
)

// FoundryFileName is the name of the Foundry project config file.
const FoundryFileName = "foundry.toml"

// foundryFile mirrors the subset of foundry.toml the checker reads. The
// layout paths can live at the root level, under [profile.default], or
// under the checker's own [check] section.
type foundryFile struct {
	Src    string `toml:"src"`
	Script string `toml:"script"`
	Test   string `toml:"test"`

	Profile struct {
		Default struct {
			Src    string `toml:"src"`
			Script string `toml:"script"`
			Test   string `toml:"test"`
		} `toml:"default"`
	} `toml:"profile"`

	Check struct {
		SrcPath    string `toml:"src_path"`
		ScriptPath string `toml:"script_path"`
		TestPath   string `toml:"test_path"`
	} `toml:"check"`
}

// FindRoot walks upward from start looking for foundry.toml and returns
// the directory containing it.
func FindRoot(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, FoundryFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads the project layout for a root directory. A missing
// foundry.toml is not an error, the standard layout applies. A malformed
// one also falls back to the standard layout, with the parse error
// returned so callers can surface a warning.
func Load(root string) (*Project, error) {
	p := &Project{Root: root, Paths: check.DefaultPaths()}

	content, err := os.ReadFile(filepath.Join(root, FoundryFileName))
	if err != nil {
		return p, nil
	}

	paths, err := ParsePaths(string(content))
	if err != nil {
		return p, err
	}
	p.Paths = paths
	return p, nil
}

// ParsePaths extracts the classification roots from foundry.toml content.
// A [check] entry wins over [profile.default], which wins over a root
// level key; each of the three paths falls back independently.
func ParsePaths(content string) (check.Paths, error) {
	var raw foundryFile
	if err := toml.Unmarshal([]byte(content), &raw); err != nil {
		return check.DefaultPaths(), fmt.Errorf("invalid %s: %w", FoundryFileName, err)
	}

	defaults := check.DefaultPaths()
	return check.Paths{
		Src:    pick(raw.Check.SrcPath, raw.Profile.Default.Src, raw.Src, defaults.Src),
		Script: pick(raw.Check.ScriptPath, raw.Profile.Default.Script, raw.Script, defaults.Script),
		Test:   pick(raw.Check.TestPath, raw.Profile.Default.Test, raw.Test, defaults.Test),
	}, nil
}

// pick returns the first non-blank candidate, normalized for
// classification.
func pick(candidates ...string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return check.NormalizePath(trimmed)
		}
	}
	return ""
}
