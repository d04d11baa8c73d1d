package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(TestNames)
}

// TestNames enforces the test naming convention so a specification can be
// generated from test names alone.
var TestNames = check.RuleDef{
	ID:          "test",
	Name:        "naming.test",
	Description: "Test names follow the test(Fork)?(Fuzz)?(_Revert(If|When|On))?_Description pattern.",
	Kinds:       []check.FileKind{check.KindTest},
	Check:       checkTestNames,
	Rationale: "Consistent test names read as behavior sentences and group plain, fork, " +
		"fuzz and revert tests together in test output.",
	BadExample:  "function testIncrement() public { ... }",
	GoodExample: "function test_Increment() public { ... }\nfunction testFuzz_RevertWhen_CallerIsNotOwner(address caller) public { ... }",
}

var testNameRe = regexp.MustCompile(`^test(Fork)?(Fuzz)?(_Revert(If|When|On))?_(\w+)*$`)

func checkTestNames(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, c := range file.Contracts() {
		for _, fn := range c.Functions() {
			if fn.Kind != solidity.FuncRegular || !fn.Visibility.IsExposed() {
				continue
			}
			if !strings.HasPrefix(fn.Name, "test") || testNameRe.MatchString(fn.Name) {
				continue
			}
			findings = append(findings, check.Finding{
				Rule:    "test",
				Path:    file.Path,
				Line:    fn.Span.Start.Line,
				Span:    fn.Span,
				Message: fmt.Sprintf("Invalid test name '%s'", fn.Name),
			})
		}
	}
	return findings
}
