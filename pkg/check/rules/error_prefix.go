package rules

import (
	"fmt"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(ErrorPrefix)
}

// ErrorPrefix requires events and custom errors declared in a contract to
// carry the contract's name as a prefix. Top-level declarations are exempt.
var ErrorPrefix = check.RuleDef{
	ID:          "error",
	Name:        "naming.event-error-prefix",
	Description: "Events and errors in contract Foo are prefixed Foo_.",
	Kinds:       []check.FileKind{check.KindSrc, check.KindTest, check.KindHandler},
	Check:       checkErrorPrefix,
	Rationale: "Prefixed events and errors stay unambiguous in logs, traces and ABIs " +
		"when several contracts declare similar names.",
	BadExample:  "contract Counter {\n    event Incremented(uint256 newValue);\n    error Unauthorized();\n}",
	GoodExample: "contract Counter {\n    event Counter_Incremented(uint256 newValue);\n    error Counter_Unauthorized();\n}",
}

func checkErrorPrefix(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, c := range file.Contracts() {
		if c.Name == "" {
			continue
		}
		prefix := c.Name + "_"
		for _, it := range c.Items {
			switch n := it.(type) {
			case *solidity.Event:
				if !strings.HasPrefix(n.Name, prefix) {
					findings = append(findings, check.Finding{
						Rule:    "error",
						Path:    file.Path,
						Line:    n.Span.Start.Line,
						Span:    n.Span,
						Message: fmt.Sprintf("Event '%s' should be prefixed with '%s'", n.Name, prefix),
					})
				}
			case *solidity.ErrorDef:
				if !strings.HasPrefix(n.Name, prefix) {
					findings = append(findings, check.Finding{
						Rule:    "error",
						Path:    file.Path,
						Line:    n.Span.Start.Line,
						Span:    n.Span,
						Message: fmt.Sprintf("Error '%s' should be prefixed with '%s'", n.Name, prefix),
					})
				}
			}
		}
	}
	return findings
}
