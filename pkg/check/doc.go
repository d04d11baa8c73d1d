// Package check implements the convention checking engine for Foundry
// Solidity projects.
//
// # Architecture
//
// Checking one file is a four stage pipeline:
//
//  1. Parse: pkg/solidity turns the source into items and comments.
//  2. Validate: every registered rule applicable to the file's kind runs
//     against the parsed file and emits raw findings.
//  3. Resolve: suppression directives in comments become line regions.
//  4. Filter: raw findings are dropped when a project override or a
//     directive region covers them; survivors make up the result.
//
// Findings are immutable. Suppression never rewrites a finding, it only
// decides whether the finding appears in the final report.
//
// # Rule Registration
//
// Rules register themselves via init() when their package is imported:
//
//	import _ "github.com/forgelint/forgelint/pkg/check/rules"
//
// The rule set is fixed. Rules cannot be disabled globally, only
// suppressed per location with inline directives or per file through a
// .forgelint override config.
//
// # Inline Directives
//
// A comment whose text starts with the "forgelint:" marker carries a
// suppression directive:
//
//	// forgelint: ignore-next-line
//	// forgelint: ignore-next-item constant
//	// forgelint: ignore-start
//	// forgelint: ignore-end
//	// forgelint: ignore-src-file
//
// An optional trailing rule name scopes the directive to one rule;
// without it the directive applies to every rule.
package check
