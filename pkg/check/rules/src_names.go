package rules

import (
	"fmt"
	"strings"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(SrcNames)
}

// SrcNames covers source file hygiene: an SPDX license header at the top
// of the file and underscore prefixes on internal and private functions.
var SrcNames = check.RuleDef{
	ID:          "src",
	Name:        "naming.src-internal",
	Description: "Source files carry an SPDX header; internal and private functions start with an underscore.",
	Kinds:       []check.FileKind{check.KindSrc},
	Check:       checkSrcNames,
	Rationale: "The underscore prefix makes a function's visibility obvious at the call " +
		"site, and the SPDX header keeps license tooling working.",
	BadExample:  "function computeShare(uint256 amount) internal view returns (uint256) { ... }",
	GoodExample: "// SPDX-License-Identifier: MIT\n...\nfunction _computeShare(uint256 amount) internal view returns (uint256) { ... }",
}

const spdxPrefix = "// SPDX-License-Identifier:"

func checkSrcNames(file *solidity.File) []check.Finding {
	var findings []check.Finding
	if !hasSPDXHeader(file) {
		findings = append(findings, check.Finding{
			Rule:    "src",
			Path:    file.Path,
			Line:    1,
			Message: "Missing SPDX-License-Identifier header",
		})
	}
	for _, c := range file.Contracts() {
		for _, fn := range c.Functions() {
			if fn.Kind != solidity.FuncRegular || !fn.Visibility.IsHidden() {
				continue
			}
			if strings.HasPrefix(fn.Name, "_") {
				continue
			}
			findings = append(findings, check.Finding{
				Rule:    "src",
				Path:    file.Path,
				Line:    fn.Span.Start.Line,
				Span:    fn.Span,
				Message: fmt.Sprintf("Function '%s' should have underscore prefix", fn.Name),
			})
		}
	}
	return findings
}

// hasSPDXHeader looks for the SPDX comment in the leading comment block.
// The first non-comment content ends the search.
func hasSPDXHeader(file *solidity.File) bool {
	for _, line := range file.Lines() {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, spdxPrefix) {
			return true
		}
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			return false
		}
	}
	return false
}
