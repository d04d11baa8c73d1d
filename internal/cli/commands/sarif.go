package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/forgelint/forgelint/internal/engine"
	"github.com/forgelint/forgelint/pkg/check"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool        SARIFTool         `json:"tool"`
	Results     []SARIFResult     `json:"results"`
	Invocations []SARIFInvocation `json:"invocations,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	FullDescription      *SARIFMessage           `json:"fullDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
	HelpURI              string                  `json:"helpUri,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID       string            `json:"ruleId"`
	RuleIndex    int               `json:"ruleIndex,omitempty"`
	Level        string            `json:"level,omitempty"` // error, warning, note, none
	Message      SARIFMessage      `json:"message"`
	Locations    []SARIFLocation   `json:"locations,omitempty"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIFInvocation describes a single invocation of the tool.
type SARIFInvocation struct {
	ExecutionSuccessful bool                   `json:"executionSuccessful"`
	CommandLine         string                 `json:"commandLine,omitempty"`
	WorkingDirectory    *SARIFArtifactLocation `json:"workingDirectory,omitempty"`
	Machine             string                 `json:"machine,omitempty"`
}

// Pseudo-rules for per-file structural diagnostics. They sit in the
// driver rule list after the convention rules so every result carries
// a rule index.
var sarifDiagnosticRules = []SARIFRule{
	{
		ID:               "forgelint/parse-error",
		Name:             "parse-error",
		ShortDescription: &SARIFMessage{Text: "File could not be parsed"},
		FullDescription: &SARIFMessage{
			Text: "The Solidity source could not be tokenized, so no convention rules were applied to it.",
		},
		DefaultConfiguration: &SARIFRuleConfiguration{Level: "error"},
	},
	{
		ID:               "forgelint/directive-error",
		Name:             "directive-error",
		ShortDescription: &SARIFMessage{Text: "Malformed suppression directive"},
		FullDescription: &SARIFMessage{
			Text: "An inline forgelint: directive could not be parsed, so findings for the file are reported unfiltered.",
		},
		DefaultConfiguration: &SARIFRuleConfiguration{Level: "error"},
	},
}

// sarifFromReport converts a run report into a SARIF 2.1.0 document.
// Convention findings and file errors both become results, file paths
// are emitted relative to the project root.
func sarifFromReport(report *engine.Report, version string) SARIFReport {
	defs := check.GetAll()
	rules := make([]SARIFRule, 0, len(defs)+len(sarifDiagnosticRules))
	ruleIndex := make(map[string]int, len(defs)+len(sarifDiagnosticRules))

	for _, def := range defs {
		ruleID := "forgelint/" + def.ID
		ruleIndex[ruleID] = len(rules)
		rules = append(rules, SARIFRule{
			ID:                   ruleID,
			Name:                 def.Name,
			ShortDescription:     &SARIFMessage{Text: def.Description},
			FullDescription:      &SARIFMessage{Text: def.Rationale},
			DefaultConfiguration: &SARIFRuleConfiguration{Level: "error"},
		})
	}
	for _, rule := range sarifDiagnosticRules {
		ruleIndex[rule.ID] = len(rules)
		rules = append(rules, rule)
	}

	results := make([]SARIFResult, 0, len(report.Findings)+len(report.Errors))
	for _, f := range report.Findings {
		ruleID := "forgelint/" + f.Rule

		region := &SARIFRegion{StartLine: f.Line}
		if f.Span.Start.Column > 0 {
			region.StartColumn = f.Span.Start.Column
			region.EndLine = f.Span.End.Line
			region.EndColumn = f.Span.End.Column
		}

		results = append(results, SARIFResult{
			RuleID:    ruleID,
			RuleIndex: ruleIndex[ruleID],
			Level:     "error",
			Message:   SARIFMessage{Text: f.Message},
			Locations: []SARIFLocation{
				{
					PhysicalLocation: &SARIFPhysicalLocation{
						ArtifactLocation: &SARIFArtifactLocation{
							URI:       f.Path,
							URIBaseID: "%SRCROOT%",
						},
						Region: region,
					},
				},
			},
			Fingerprints: map[string]string{
				"forgelint/v1": sarifFingerprint(f.Path, f.Line, f.Rule),
			},
		})
	}

	for _, fe := range report.Errors {
		ruleID := "forgelint/" + fe.Type + "-error"

		var region *SARIFRegion
		if fe.Line > 0 {
			region = &SARIFRegion{StartLine: fe.Line}
		}

		results = append(results, SARIFResult{
			RuleID:    ruleID,
			RuleIndex: ruleIndex[ruleID],
			Level:     "error",
			Message:   SARIFMessage{Text: fe.Message},
			Locations: []SARIFLocation{
				{
					PhysicalLocation: &SARIFPhysicalLocation{
						ArtifactLocation: &SARIFArtifactLocation{
							URI:       fe.Path,
							URIBaseID: "%SRCROOT%",
						},
						Region: region,
					},
				},
			},
			Fingerprints: map[string]string{
				"forgelint/v1": sarifFingerprint(fe.Path, fe.Line, fe.Type),
			},
		})
	}

	return SARIFReport{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            "forgelint",
						Version:         version,
						SemanticVersion: version,
						InformationURI:  "https://github.com/forgelint/forgelint",
						Rules:           rules,
					},
				},
				Results: results,
				Invocations: []SARIFInvocation{
					{
						ExecutionSuccessful: true,
						WorkingDirectory: &SARIFArtifactLocation{
							URI: report.Root,
						},
						Machine: runtime.GOOS + "/" + runtime.GOARCH,
					},
				},
			},
		},
	}
}

// writeSARIF encodes the report as an indented SARIF document.
func writeSARIF(w io.Writer, report *engine.Report, version string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifFromReport(report, version))
}

// sarifFingerprint creates a stable fingerprint for result deduplication
// across runs.
func sarifFingerprint(path string, line int, rule string) string {
	data := fmt.Sprintf("%s:%d:%s", path, line, rule)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
