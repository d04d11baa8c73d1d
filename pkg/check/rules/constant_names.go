package rules

import (
	"fmt"
	"regexp"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(ConstantNames)
}

// ConstantNames requires ALL_CAPS names for constants and immutables.
var ConstantNames = check.RuleDef{
	ID:          "constant",
	Name:        "naming.constant",
	Description: "Constant and immutable names are upper-case with underscores.",
	Check:       checkConstantNames,
	Rationale: "ALL_CAPS marks values that never change after construction, so readers " +
		"can tell them apart from state variables at the call site.",
	BadExample:  "uint256 constant maxSupply = 1e18;\naddress immutable deployer_;",
	GoodExample: "uint256 constant MAX_SUPPLY = 1e18;\naddress immutable DEPLOYER;",
}

var constantNameRe = regexp.MustCompile(`^[A-Z0-9_]+$`)

func checkConstantNames(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, it := range file.AllItems() {
		v, ok := it.(*solidity.Variable)
		if !ok || (!v.IsConstant && !v.IsImmutable) {
			continue
		}
		if constantNameRe.MatchString(v.Name) {
			continue
		}
		findings = append(findings, check.Finding{
			Rule:    "constant",
			Path:    file.Path,
			Line:    v.Span.Start.Line,
			Span:    v.Span,
			Message: fmt.Sprintf("Invalid constant or immutable name '%s'", v.Name),
		})
	}
	return findings
}
