package rules

import (
	"fmt"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(ScriptRun)
}

// ScriptRun constrains the public surface of deployment scripts: each
// concrete script contract exposes exactly one public function, named run.
var ScriptRun = check.RuleDef{
	ID:          "script",
	Name:        "structure.script-interface",
	Description: "Script contracts expose exactly one public function named run.",
	Kinds:       []check.FileKind{check.KindScript},
	Check:       checkScriptRun,
	Rationale: "A single run entry point keeps deployments reproducible: there is one " +
		"way to execute a script, and nothing else is callable by accident.",
	BadExample:  "contract Deploy is Script {\n    function run() public { ... }\n    function deployMocks() public { ... }\n}",
	GoodExample: "contract Deploy is Script {\n    function run() public { ... }\n    function _deployMocks() internal { ... }\n}",
}

func checkScriptRun(file *solidity.File) []check.Finding {
	var findings []check.Finding
	for _, c := range file.Contracts() {
		if !c.IsConcrete() {
			continue
		}
		runs := 0
		for _, fn := range c.Functions() {
			if fn.Kind != solidity.FuncRegular || !fn.Visibility.IsExposed() {
				continue
			}
			if fn.Name == "run" {
				runs++
				continue
			}
			findings = append(findings, check.Finding{
				Rule:    "script",
				Path:    file.Path,
				Line:    fn.Span.Start.Line,
				Span:    fn.Span,
				Message: fmt.Sprintf("Public function '%s' is not allowed in script contract '%s'", fn.Name, c.Name),
			})
		}
		if runs != 1 {
			findings = append(findings, check.Finding{
				Rule:    "script",
				Path:    file.Path,
				Line:    c.Span.Start.Line,
				Span:    c.Span,
				Message: fmt.Sprintf("Script contract '%s' must have exactly one public 'run' function, found %d", c.Name, runs),
			})
		}
	}
	return findings
}
