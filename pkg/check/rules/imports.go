package rules

import (
	"fmt"
	"regexp"

	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
)

func init() {
	check.Register(Imports)
}

// Imports flags import statements that pull in a whole file without naming
// symbols, and named imports whose symbols the file never references.
var Imports = check.RuleDef{
	ID:          "import",
	Name:        "structure.imports",
	Description: "Imports name the symbols they bind, and every bound symbol is used.",
	Check:       checkImports,
	Rationale: "Named imports make a file's dependencies explicit and keep the " +
		"namespace free of symbols nobody asked for. Unused imports are dead weight.",
	BadExample:  "import \"./Token.sol\";\nimport * as utils from \"./Utils.sol\";",
	GoodExample: "import {Token} from \"./Token.sol\";\nimport {add, sub} from \"./Utils.sol\";",
}

func checkImports(file *solidity.File) []check.Finding {
	imports := fileImports(file)
	var findings []check.Finding
	for _, imp := range imports {
		switch imp.Form {
		case solidity.ImportPlain:
			findings = append(findings, check.Finding{
				Rule:    "import",
				Path:    file.Path,
				Line:    imp.Span.Start.Line,
				Span:    imp.Span,
				Message: fmt.Sprintf("Import of '%s' should use named symbols", imp.Path),
			})
		case solidity.ImportStar:
			findings = append(findings, check.Finding{
				Rule:    "import",
				Path:    file.Path,
				Line:    imp.Span.Start.Line,
				Span:    imp.Span,
				Message: fmt.Sprintf("Wildcard import of '%s' should use named symbols", imp.Path),
			})
		case solidity.ImportNamed:
			for _, sym := range imp.Symbols {
				local := sym.Local()
				if local == "" || symbolUsed(file, imports, local) {
					continue
				}
				findings = append(findings, check.Finding{
					Rule:    "import",
					Path:    file.Path,
					Line:    sym.Pos.Line,
					Span:    imp.Span,
					Message: fmt.Sprintf("Unused import: '%s'", local),
				})
			}
		case solidity.ImportAliased:
			if imp.Alias == "" || symbolUsed(file, imports, imp.Alias) {
				continue
			}
			findings = append(findings, check.Finding{
				Rule:    "import",
				Path:    file.Path,
				Line:    imp.Span.Start.Line,
				Span:    imp.Span,
				Message: fmt.Sprintf("Unused import: '%s'", imp.Alias),
			})
		}
	}
	return findings
}

func fileImports(file *solidity.File) []*solidity.Import {
	var out []*solidity.Import
	for _, it := range file.Items {
		if imp, ok := it.(*solidity.Import); ok {
			out = append(out, imp)
		}
	}
	return out
}

// symbolUsed reports whether name occurs in the source outside of import
// statements and comments. A whole-word match anywhere else counts as a use.
func symbolUsed(file *solidity.File, imports []*solidity.Import, name string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for _, loc := range re.FindAllStringIndex(file.Src, -1) {
		offset := loc[0]
		if inImport(imports, offset) || inComment(file, offset) {
			continue
		}
		return true
	}
	return false
}

func inImport(imports []*solidity.Import, offset int) bool {
	for _, imp := range imports {
		if imp.Span.Contains(offset) {
			return true
		}
	}
	return false
}

// inComment reports whether the byte offset falls inside any comment span.
func inComment(file *solidity.File, offset int) bool {
	for _, c := range file.Comments {
		if c.Span.Contains(offset) {
			return true
		}
	}
	return false
}
