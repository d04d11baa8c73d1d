package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelint/forgelint/pkg/check"
)

func TestRulesCommand_ListAll(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "text"})

	err := cmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "Convention Rules (8)")
	for _, id := range check.IDs() {
		assert.Contains(t, got, id)
	}
	assert.Contains(t, got, "naming.constant")
	assert.Contains(t, got, "Use 'forgelint rules <rule-id>'")
}

func TestRulesCommand_ListVerbose(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "text", "-V"})

	err := cmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "Constant and immutable names are upper-case")
	assert.Contains(t, got, "Why: ")
}

func TestRulesCommand_ListMarkdown(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "markdown"})

	err := cmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "# Convention Rules")
	assert.Contains(t, got, "- **constant** - naming.constant (all files)")
	assert.Contains(t, got, "- **test** - naming.test (test files)")
}

func TestRulesCommand_ListJSON(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--format", "json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var out RulesJSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, check.Count(), out.Count)
	require.NotEmpty(t, out.Rules)
	assert.Equal(t, "constant", out.Rules[0].ID, "rules should be sorted by ID")
	for _, rule := range out.Rules {
		assert.NotEmpty(t, rule.Name, "rule %s should have a name", rule.ID)
		assert.NotEmpty(t, rule.Description, "rule %s should have a description", rule.ID)
	}
}

func TestRulesCommand_KindFilter(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--kind", "script", "--format", "json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var out RulesJSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	// Rules bound to the script kind plus the unrestricted ones.
	ids := make([]string, 0, len(out.Rules))
	for _, rule := range out.Rules {
		ids = append(ids, rule.ID)
	}
	assert.Equal(t, []string{"constant", "import", "script", "variable"}, ids)
}

func TestRulesCommand_KindFilterInvalid(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--kind", "nonsense"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown file kind")
}

func TestRulesCommand_ShowRule(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"src", "--format", "text"})

	err := cmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "src - naming.src-internal")
	assert.Contains(t, got, "Applies to")
	assert.Contains(t, got, "Description")
	assert.Contains(t, got, "Good Example")
}

func TestRulesCommand_ShowRuleMarkdown(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"test", "--format", "markdown"})

	err := cmd.Execute()
	require.NoError(t, err)

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "# test - naming.test"), "markdown output should start with a header, got: %s", got)
	assert.Contains(t, got, "**Applies to:** test files")
	assert.Contains(t, got, "```solidity")
}

func TestRulesCommand_ShowRuleJSON(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"eip712", "--format", "json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var doc ruleDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "eip712", doc.ID)
	assert.Equal(t, "conventions.eip712-typehash", doc.Name)
	assert.Equal(t, []string{"src"}, doc.Kinds)
	assert.NotEmpty(t, doc.Rationale)
}

func TestRulesCommand_NotFound(t *testing.T) {
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"INVALID99"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "constant", "error should list the valid rule IDs")
}

func TestAppliesTo(t *testing.T) {
	tests := []struct {
		name string
		rule check.RuleDef
		want string
	}{
		{
			name: "unrestricted",
			rule: check.RuleDef{ID: "x"},
			want: "all files",
		},
		{
			name: "single kind",
			rule: check.RuleDef{ID: "x", Kinds: []check.FileKind{check.KindSrc}},
			want: "src files",
		},
		{
			name: "multiple kinds",
			rule: check.RuleDef{ID: "x", Kinds: []check.FileKind{check.KindSrc, check.KindTest, check.KindHandler}},
			want: "src, test, handler files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appliesTo(tt.rule))
		})
	}
}

func TestKindFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    check.FileKind
		wantErr bool
	}{
		{name: "src", want: check.KindSrc},
		{name: "script", want: check.KindScript},
		{name: "script-helper", want: check.KindScriptHelper},
		{name: "test", want: check.KindTest},
		{name: "test-helper", want: check.KindTestHelper},
		{name: "handler", want: check.KindHandler},
		{name: "sources", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := kindFromName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown file kind")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuleDocFromDef(t *testing.T) {
	rule := check.RuleDef{
		ID:          "demo",
		Name:        "naming.demo",
		Description: "Demo rule.",
		Kinds:       []check.FileKind{check.KindTest, check.KindTestHelper},
		Rationale:   "Because demos.",
		BadExample:  "bad",
		GoodExample: "good",
	}

	doc := ruleDocFromDef(rule)

	assert.Equal(t, "demo", doc.ID)
	assert.Equal(t, "naming.demo", doc.Name)
	assert.Equal(t, []string{"test", "test-helper"}, doc.Kinds)
	assert.Equal(t, "Because demos.", doc.Rationale)
	assert.Equal(t, "bad", doc.BadExample)
	assert.Equal(t, "good", doc.GoodExample)
}

func TestTruncateOneLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exact length unchanged",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "long string truncated",
			input:  "hello world this is long",
			maxLen: 10,
			want:   "hello w...",
		},
		{
			name:   "newlines flattened",
			input:  "line one\nline two",
			maxLen: 80,
			want:   "line one line two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateOneLine(tt.input, tt.maxLen))
		})
	}
}
