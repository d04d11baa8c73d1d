// Package config loads project-level configuration: the Foundry layout
// paths from foundry.toml and the project root discovery used by the CLI.
// This package is decoupled from CLI concerns so the engine and tests can
// load projects directly.
package config

import "github.com/forgelint/forgelint/pkg/check"

// Project describes a checked Foundry project.
type Project struct {
	// Root is the absolute project root, the directory holding
	// foundry.toml (or the requested directory when none exists).
	Root string

	// Paths are the project-relative classification roots.
	Paths check.Paths
}
