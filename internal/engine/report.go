package engine

// report.go - aggregation of per-file results into a run report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

// File error types.
const (
	ErrorTypeParse     = "parse"
	ErrorTypeDirective = "directive"
)

// FileError is a structural diagnostic for one file: the file could not
// be parsed, or carried a malformed suppression directive.
type FileError struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Type    string `json:"type"` // "parse" or "directive"
	Message string `json:"message"`
}

func (e FileError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s error: %s", e.Path, e.Line, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Path, e.Type, e.Message)
}

// Report is the aggregated outcome of one check run.
type Report struct {
	// ID uniquely identifies the run.
	ID string
	// Root is the absolute project root the run covered.
	Root string
	// Files is the number of files checked.
	Files int
	// Ignored is the number of discovered files dropped by ignore globs.
	Ignored int
	// CacheHits is the number of files replayed from the cache.
	CacheHits int
	// Findings are the surviving findings ordered by path, line, rule.
	Findings []check.Finding
	// Errors are per-file structural diagnostics, ordered by path.
	Errors []FileError
	// Warnings are non-fatal run notes, such as override globs that
	// matched no checked file.
	Warnings []string
	// ByRule counts findings per rule identifier.
	ByRule map[string]int
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Success reports whether the run passed: no findings and no file errors.
func (r *Report) Success() bool {
	return len(r.Findings) == 0 && len(r.Errors) == 0
}

// Total returns the number of findings.
func (r *Report) Total() int {
	return len(r.Findings)
}

// ExitCode maps the report outcome onto the process exit code.
func (r *Report) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}

// Summary returns a human-readable one-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"Files: %d checked (%d cached, %d ignored) | Findings: %d | Errors: %d | Duration: %s",
		r.Files, r.CacheHits, r.Ignored, len(r.Findings), len(r.Errors),
		r.Duration.Round(time.Millisecond),
	)
}

// add folds one file result into the report.
func (r *Report) add(res *check.Result) {
	r.Findings = append(r.Findings, res.Findings...)
	for _, f := range res.Findings {
		r.ByRule[f.Rule]++
	}
	if res.ParseErr != nil {
		r.Errors = append(r.Errors, newFileError(res.Path, ErrorTypeParse, res.ParseErr))
	}
	if res.DirectiveErr != nil {
		r.Errors = append(r.Errors, newFileError(res.Path, ErrorTypeDirective, res.DirectiveErr))
	}
}

// finish orders the collected findings and errors.
func (r *Report) finish() {
	check.SortFindings(r.Findings)
	sort.SliceStable(r.Errors, func(i, j int) bool {
		if r.Errors[i].Path != r.Errors[j].Path {
			return r.Errors[i].Path < r.Errors[j].Path
		}
		return r.Errors[i].Line < r.Errors[j].Line
	})
}

// newFileError extracts position and message from the typed parse and
// directive errors, falling back to the raw error text.
func newFileError(path, errType string, err error) FileError {
	fe := FileError{Path: path, Type: errType, Message: err.Error()}

	var parseErr *solidity.ParseError
	var directiveErr *check.DirectiveError
	switch {
	case errors.As(err, &parseErr):
		fe.Line = parseErr.Pos.Line
		fe.Message = parseErr.Message
	case errors.As(err, &directiveErr):
		fe.Line = directiveErr.Line
		fe.Message = directiveErr.Message
	}
	return fe
}
