package output

// Machine-readable document types for the check command. The command
// converts an engine report into these before encoding.

// CheckSummary aggregates counts for a check run.
type CheckSummary struct {
	FilesChecked  int            `json:"files_checked"`
	FilesIgnored  int            `json:"files_ignored"`
	CacheHits     int            `json:"cache_hits"`
	TotalFindings int            `json:"total_findings"`
	TotalErrors   int            `json:"total_errors"`
	ByRule        map[string]int `json:"by_rule,omitempty"`
}

// CheckFinding is one rule violation.
type CheckFinding struct {
	Rule    string `json:"rule"`
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// CheckFileError is a structural diagnostic for one file: a parse failure
// or a malformed suppression directive.
type CheckFileError struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CheckOutput is the top-level JSON document for a check run.
type CheckOutput struct {
	ID       string           `json:"id"`
	Root     string           `json:"root"`
	Success  bool             `json:"success"`
	Summary  CheckSummary     `json:"summary"`
	Findings []CheckFinding   `json:"findings"`
	Errors   []CheckFileError `json:"errors,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Duration string           `json:"duration"`
}
