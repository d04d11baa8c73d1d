package config

import (
	"fmt"
	"os"
)

// validOutputModes are the accepted values for the output setting.
var validOutputModes = map[string]bool{
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SrcDir == "" && c.ScriptDir == "" && c.TestDir == "" {
		return fmt.Errorf("at least one of src_dir, script_dir, test_dir is required")
	}
	if !validOutputModes[c.OutputFormat] {
		return fmt.Errorf("invalid output mode %q (valid values: auto, text, markdown, json)", c.OutputFormat)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be zero or positive, got %d", c.Jobs)
	}
	return nil
}

// ValidateProjectRoot checks that the project root directory exists.
// Commands that need to read sources call this; help output works without it.
func (c *Config) ValidateProjectRoot() error {
	info, err := os.Stat(c.ProjectRoot)
	if os.IsNotExist(err) {
		return fmt.Errorf("project root does not exist: %s\nHint: Run inside a Foundry project or use --root to point at one", c.ProjectRoot)
	}
	if err != nil {
		return fmt.Errorf("failed to stat project root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", c.ProjectRoot)
	}
	return nil
}
