package rules

import (
	"fmt"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
	"github.com/forgelint/forgelint/pkg/token"
)

func init() {
	check.Register(VariableNames)
}

// VariableNames enforces the underscore convention that separates storage
// from transient values. State variables and storage-located parameters and
// locals must not carry an underscore prefix. Every other parameter and local
// must carry one. Return values and unnamed parameters are not checked.
var VariableNames = check.RuleDef{
	ID:          "variable",
	Name:        "naming.variable-prefix",
	Description: "Underscore prefixes mark non-storage values and nothing else.",
	Kinds: []check.FileKind{
		check.KindSrc, check.KindTest, check.KindHandler, check.KindScript,
	},
	Check: checkVariableNames,
	Rationale: "With the prefix reserved for values that live outside storage, a " +
		"bare name always reads as state and an underscored name never does.",
	BadExample: "contract Vault {\n    uint256 _totalShares;\n\n" +
		"    function deposit(uint256 amount) external {\n        uint256 shares = _convert(amount);\n    }\n}",
	GoodExample: "contract Vault {\n    uint256 totalShares;\n\n" +
		"    function deposit(uint256 _amount) external {\n        uint256 _shares = _convert(_amount);\n    }\n}",
}

func checkVariableNames(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, it := range file.Items {
		switch n := it.(type) {
		case *solidity.Function:
			findings = append(findings, checkFunctionVars(file, n)...)
		case *solidity.Contract:
			for _, member := range n.Items {
				switch m := member.(type) {
				case *solidity.Function:
					findings = append(findings, checkFunctionVars(file, m)...)
				case *solidity.Variable:
					if m.Name == "" || !strings.HasPrefix(m.Name, "_") {
						continue
					}
					findings = append(findings, check.Finding{
						Rule:    "variable",
						Path:    file.Path,
						Line:    m.Span.Start.Line,
						Span:    m.Span,
						Message: fmt.Sprintf("State variable '%s' should NOT have underscore prefix", m.Name),
					})
				}
			}
		}
	}
	return findings
}

func checkFunctionVars(file *solidity.File, fn *solidity.Function) []check.Finding {
	var findings []check.Finding
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		if msg := variableNameMessage(p.Name, p.Location, "Storage parameter", "Parameter"); msg != "" {
			findings = append(findings, check.Finding{
				Rule:    "variable",
				Path:    file.Path,
				Line:    p.Pos.Line,
				Span:    token.Span{Start: p.Pos, End: p.Pos},
				Message: msg,
			})
		}
	}
	for _, lv := range fn.Locals {
		if lv.Name == "" {
			continue
		}
		if msg := variableNameMessage(lv.Name, lv.Location, "Storage variable", "Local variable"); msg != "" {
			findings = append(findings, check.Finding{
				Rule:    "variable",
				Path:    file.Path,
				Line:    lv.Pos.Line,
				Span:    token.Span{Start: lv.Pos, End: lv.Pos},
				Message: msg,
			})
		}
	}
	return findings
}

// variableNameMessage returns the violation message for a parameter or local,
// or "" when the name follows the convention. Storage-located values must not
// have the underscore prefix, everything else must.
func variableNameMessage(name, location, storageNoun, plainNoun string) string {
	underscore := strings.HasPrefix(name, "_")
	if location == "storage" {
		if underscore {
			return fmt.Sprintf("%s '%s' should NOT have underscore prefix", storageNoun, name)
		}
		return ""
	}
	if !underscore {
		return fmt.Sprintf("%s '%s' should have underscore prefix", plainNoun, name)
	}
	return ""
}
