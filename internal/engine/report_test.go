package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
	"github.com/forgelint/forgelint/pkg/token"
)

func TestReportSuccess(t *testing.T) {
	tests := []struct {
		name     string
		report   Report
		success  bool
		exitCode int
	}{
		{
			name:     "empty report succeeds",
			report:   Report{},
			success:  true,
			exitCode: 0,
		},
		{
			name:     "findings fail the run",
			report:   Report{Findings: []check.Finding{{Rule: "src"}}},
			success:  false,
			exitCode: 1,
		},
		{
			name:     "file errors fail the run",
			report:   Report{Errors: []FileError{{Path: "src/A.sol", Type: ErrorTypeParse}}},
			success:  false,
			exitCode: 1,
		},
		{
			name:     "warnings alone still succeed",
			report:   Report{Warnings: []string{"override glob \"docs/**\" matches no checked file"}},
			success:  true,
			exitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Success(); got != tt.success {
				t.Errorf("Success() = %v, want %v", got, tt.success)
			}
			if got := tt.report.ExitCode(); got != tt.exitCode {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exitCode)
			}
		})
	}
}

func TestReportSummary(t *testing.T) {
	report := Report{
		Files:     3,
		CacheHits: 1,
		Ignored:   2,
		Findings:  []check.Finding{{Rule: "src"}},
		Errors:    []FileError{{Path: "src/A.sol"}},
		Duration:  1500 * time.Millisecond,
	}

	want := "Files: 3 checked (1 cached, 2 ignored) | Findings: 1 | Errors: 1 | Duration: 1.5s"
	if got := report.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestFileErrorString(t *testing.T) {
	withLine := FileError{Path: "src/A.sol", Line: 3, Type: ErrorTypeDirective, Message: "nested ignore-start, blocks do not nest"}
	want := "src/A.sol:3: directive error: nested ignore-start, blocks do not nest"
	if got := withLine.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	noLine := FileError{Path: "src/A.sol", Type: ErrorTypeParse, Message: "boom"}
	want = "src/A.sol: parse error: boom"
	if got := noLine.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewFileError(t *testing.T) {
	parseErr := &solidity.ParseError{
		Pos:     token.Position{Line: 7, Column: 2},
		Message: solidity.ErrUnterminatedComment,
	}
	fe := newFileError("src/A.sol", ErrorTypeParse, parseErr)
	if fe.Line != 7 || fe.Message != "unterminated block comment" {
		t.Errorf("unexpected parse file error: %+v", fe)
	}

	directiveErr := &check.DirectiveError{Path: "src/A.sol", Line: 4, Message: "invalid inline directive: ignore-everything"}
	fe = newFileError("src/A.sol", ErrorTypeDirective, directiveErr)
	if fe.Line != 4 || fe.Message != "invalid inline directive: ignore-everything" {
		t.Errorf("unexpected directive file error: %+v", fe)
	}

	// Untyped errors keep their full text and report no line.
	fe = newFileError("src/A.sol", ErrorTypeParse, errors.New("read failed"))
	if fe.Line != 0 || fe.Message != "read failed" {
		t.Errorf("unexpected generic file error: %+v", fe)
	}
}

func TestReportAddAndFinish(t *testing.T) {
	report := &Report{ByRule: make(map[string]int)}

	report.add(&check.Result{
		Path: "test/B.t.sol",
		Findings: []check.Finding{
			{Rule: "test", Path: "test/B.t.sol", Line: 9, Message: "Invalid test name 'testB'"},
		},
	})
	report.add(&check.Result{
		Path: "src/A.sol",
		Findings: []check.Finding{
			{Rule: "src", Path: "src/A.sol", Line: 5, Message: "Function 'b' should have underscore prefix"},
			{Rule: "constant", Path: "src/A.sol", Line: 5, Message: "Invalid constant or immutable name 'bad'"},
		},
		DirectiveErr: &check.DirectiveError{Path: "src/A.sol", Line: 2, Message: "ignore-end without a matching ignore-start"},
	})
	report.finish()

	if report.Total() != 3 {
		t.Fatalf("expected 3 findings, got %d", report.Total())
	}

	// Sorted by path, then line, then rule.
	if report.Findings[0].Rule != "constant" || report.Findings[1].Rule != "src" || report.Findings[2].Rule != "test" {
		t.Errorf("unexpected finding order: %v", report.Findings)
	}

	if report.ByRule["src"] != 1 || report.ByRule["constant"] != 1 || report.ByRule["test"] != 1 {
		t.Errorf("unexpected per-rule counts: %v", report.ByRule)
	}

	if len(report.Errors) != 1 || report.Errors[0].Type != ErrorTypeDirective {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
}
