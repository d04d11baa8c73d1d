package check

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/forgelint/forgelint/pkg/token"
)

// =============================================================================
// File Kinds
// =============================================================================

// FileKind classifies a source file by its location in the project tree.
// Rules restrict themselves to the kinds they apply to.
type FileKind int

// File kinds. KindOther covers files outside the configured roots.
const (
	KindOther FileKind = iota
	KindSrc
	KindScript
	KindScriptHelper
	KindTest
	KindTestHelper
	KindHandler
)

func (k FileKind) String() string {
	switch k {
	case KindSrc:
		return "src"
	case KindScript:
		return "script"
	case KindScriptHelper:
		return "script-helper"
	case KindTest:
		return "test"
	case KindTestHelper:
		return "test-helper"
	case KindHandler:
		return "handler"
	default:
		return "other"
	}
}

// Paths holds the project-relative root directories used to classify files.
// They come from foundry.toml and default to src, script and test.
type Paths struct {
	Src    string
	Script string
	Test   string
}

// DefaultPaths returns the standard Foundry project layout.
func DefaultPaths() Paths {
	return Paths{Src: "src", Script: "script", Test: "test"}
}

// Classify determines the kind of a file from its project-relative path.
//
// Files under the test root are handlers when a "handlers" path segment is
// present, tests when named *.t.sol, and test helpers otherwise. Files
// under the script root split the same way on the *.s.sol suffix.
func Classify(p string, paths Paths) FileKind {
	p = NormalizePath(p)
	switch {
	case underRoot(p, paths.Test):
		if hasSegment(p, "handlers") {
			return KindHandler
		}
		if strings.HasSuffix(p, ".t.sol") {
			return KindTest
		}
		return KindTestHelper
	case underRoot(p, paths.Script):
		if strings.HasSuffix(p, ".s.sol") {
			return KindScript
		}
		return KindScriptHelper
	case underRoot(p, paths.Src):
		return KindSrc
	}
	return KindOther
}

// NormalizePath cleans a project-relative path for classification and glob
// matching: forward slashes, no leading "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

func underRoot(p, root string) bool {
	root = NormalizePath(root)
	if root == "" {
		return false
	}
	return p == root || strings.HasPrefix(p, root+"/")
}

func hasSegment(p, seg string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == seg {
			return true
		}
	}
	return false
}

// =============================================================================
// Findings
// =============================================================================

// Finding is a single rule violation at a specific location. Findings are
// never mutated after creation; the suppression filter only includes or
// excludes them.
type Finding struct {
	Rule    string     // rule identifier, e.g. "constant"
	Path    string     // project-relative file path
	Line    int        // 1-based line of the violation
	Span    token.Span // optional fine-grained span; zero when line-only
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s", f.Path, f.Line, f.Rule, f.Message)
}

// SortFindings orders findings by file path, then line, then rule.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// =============================================================================
// Errors
// =============================================================================

// DirectiveError reports a malformed suppression directive. It is scoped to
// one file: validators for that file still run, but no suppression is
// applied, and the run fails.
type DirectiveError struct {
	Path    string
	Line    int
	Message string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("invalid directive in %s on line %d: %s", e.Path, e.Line, e.Message)
}

// ConfigError reports an unusable override configuration. It is fatal for
// the entire run and surfaces before any file is checked.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid override config: %s", e.Message)
	}
	return fmt.Sprintf("invalid override config %s: %s", e.Path, e.Message)
}
