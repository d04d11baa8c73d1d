package check

import (
	"github.com/forgelint/forgelint/pkg/solidity"
)

// Analyzer runs the registered rules against source files. It holds the
// run-wide read-only state shared by every file pipeline: the path
// classification roots and the override config.
type Analyzer struct {
	paths     Paths
	overrides *Overrides
}

// NewAnalyzer creates an analyzer. A nil overrides config suppresses
// nothing.
func NewAnalyzer(paths Paths, overrides *Overrides) *Analyzer {
	return &Analyzer{paths: paths, overrides: overrides}
}

// Result holds the outcome of checking one file. ParseErr and
// DirectiveErr are diagnostics rather than control flow: a file that
// fails to parse contributes no findings, and a file with a malformed
// directive reports its findings unfiltered.
type Result struct {
	Path         string
	Kind         FileKind
	Findings     []Finding
	ParseErr     error
	DirectiveErr error
}

// Failed reports whether the file produced findings or an error.
func (r *Result) Failed() bool {
	return len(r.Findings) > 0 || r.ParseErr != nil || r.DirectiveErr != nil
}

// CheckSource parses and checks a single source file. The path should be
// project-relative; it is used for classification, override matching and
// finding locations.
func (a *Analyzer) CheckSource(path, src string) *Result {
	res := &Result{Path: path, Kind: Classify(path, a.paths)}

	file, err := solidity.Parse(path, src)
	if err != nil {
		res.ParseErr = err
		return res
	}

	raw := a.runRules(file, res.Kind)

	regions, err := ResolveRegions(file)
	if err != nil {
		// Malformed directives disable suppression for the file; the raw
		// findings are reported as is.
		res.DirectiveErr = err
		res.Findings = raw
		return res
	}

	res.Findings = Filter(raw, regions, a.overrides)
	return res
}

// runRules executes every rule applicable to the file's kind and unions
// the raw findings in rule order.
func (a *Analyzer) runRules(file *solidity.File, kind FileKind) []Finding {
	var findings []Finding
	for _, rule := range GetByKind(kind) {
		findings = append(findings, rule.Check(file)...)
	}
	return findings
}
