package output

// SpecBehavior is one behavior sentence derived from a test name.
type SpecBehavior struct {
	Sentence string `json:"sentence" yaml:"sentence"`
	Test     string `json:"test" yaml:"test"`
	Line     int    `json:"line" yaml:"line"`
}

// SpecContract groups the behaviors of one test contract.
type SpecContract struct {
	Name      string         `json:"name" yaml:"name"`
	File      string         `json:"file" yaml:"file"`
	Behaviors []SpecBehavior `json:"behaviors" yaml:"behaviors"`
	Helpers   []string       `json:"helpers,omitempty" yaml:"helpers,omitempty"`
}

// SpecOutput is the machine-readable behavior specification.
type SpecOutput struct {
	Root      string         `json:"root" yaml:"root"`
	TestFiles int            `json:"test_files" yaml:"test_files"`
	Tests     int            `json:"tests" yaml:"tests"`
	Contracts []SpecContract `json:"contracts" yaml:"contracts"`
}
