package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/forgelint/forgelint/internal/cli/testutil"
	"github.com/forgelint/forgelint/internal/engine"
	"github.com/forgelint/forgelint/pkg/check"
)

// badSource misses the SPDX header and has an internal function without
// an underscore prefix, two findings under the src rule.
const badSource = `pragma solidity ^0.8.20;

contract Bad {
    uint256 public total;

    function bump() external {
        total = helper(total);
    }

    function helper(uint256 _value) internal pure returns (uint256) {
        return _value + 1;
    }
}
`

// runCheckCommand executes the check command against a project root and
// returns the captured stdout.
func runCheckCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCheckCommand("0.1.0")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckCommand_CleanProject(t *testing.T) {
	root := testutil.SetupTestProject(t)

	got, err := runCheckCommand(t, root, "--format", "json")
	require.NoError(t, err)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.True(t, out.Success)
	assert.Equal(t, 3, out.Summary.FilesChecked)
	assert.Equal(t, 0, out.Summary.TotalFindings)
	assert.Empty(t, out.Findings)
	assert.Empty(t, out.Errors)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, root, out.Root)
}

func TestCheckCommand_Findings(t *testing.T) {
	root := testutil.SetupTestProject(t)
	testutil.WriteSource(t, root, "src/Bad.sol", badSource)

	got, err := runCheckCommand(t, root, "--format", "json")
	require.ErrorIs(t, err, ErrChecksFailed)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.False(t, out.Success)
	assert.Equal(t, 4, out.Summary.FilesChecked)
	assert.Equal(t, 2, out.Summary.TotalFindings)
	assert.Equal(t, 2, out.Summary.ByRule["src"])

	require.Len(t, out.Findings, 2)
	for _, f := range out.Findings {
		assert.Equal(t, "src", f.Rule)
		assert.Equal(t, "src/Bad.sol", f.Path)
	}
	assert.Equal(t, 1, out.Findings[0].Line)
	assert.Contains(t, out.Findings[0].Message, "SPDX")
	assert.Contains(t, out.Findings[1].Message, "helper")
}

func TestCheckCommand_FoundryLayout(t *testing.T) {
	root := t.TempDir()
	foundryToml := "[profile.default]\nsrc = \"contracts\"\ntest = \"testing\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(foundryToml), 0644))
	testutil.WriteSource(t, root, "contracts/Bad.sol", badSource)

	got, err := runCheckCommand(t, root, "--format", "json")
	require.ErrorIs(t, err, ErrChecksFailed, "the contracts root from foundry.toml should be walked")

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.Equal(t, 1, out.Summary.FilesChecked)
	assert.Equal(t, 2, out.Summary.TotalFindings)
	require.Len(t, out.Findings, 2)
	assert.Equal(t, "contracts/Bad.sol", out.Findings[0].Path)
}

func TestCheckCommand_TextOutput(t *testing.T) {
	root := testutil.SetupTestProject(t)

	got, err := runCheckCommand(t, root, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, got, "All checks passed")
	assert.Contains(t, got, "Files: 3 checked")

	testutil.WriteSource(t, root, "src/Bad.sol", badSource)

	got, err = runCheckCommand(t, root, "--format", "text")
	require.ErrorIs(t, err, ErrChecksFailed)
	assert.Contains(t, got, "src/Bad.sol")
	assert.Contains(t, got, "Checks failed")
	assert.Contains(t, got, "underscore prefix")
}

func TestCheckCommand_ParseError(t *testing.T) {
	root := testutil.SetupTestProject(t)
	testutil.WriteSource(t, root, "src/Broken.sol", "// SPDX-License-Identifier: MIT\ncontract Broken {\n")

	got, err := runCheckCommand(t, root, "--format", "json")
	require.ErrorIs(t, err, ErrChecksFailed)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.False(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "src/Broken.sol", out.Errors[0].Path)
	assert.Equal(t, "parse", out.Errors[0].Type)
	assert.Contains(t, out.Errors[0].Message, "unbalanced braces")
}

func TestCheckCommand_OverridesSuppressRule(t *testing.T) {
	root := testutil.SetupTestProject(t)
	testutil.WriteSource(t, root, "src/Bad.sol", badSource)
	testutil.WriteSource(t, root, check.OverridesFileName, "[ignore.overrides]\n\"src/Bad.sol\" = [\"src\"]\n")

	got, err := runCheckCommand(t, root, "--format", "json")
	require.NoError(t, err)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.True(t, out.Success)
	assert.Equal(t, 4, out.Summary.FilesChecked)
	assert.Empty(t, out.Findings)
}

func TestCheckCommand_OverridesIgnoreFile(t *testing.T) {
	root := testutil.SetupTestProject(t)
	testutil.WriteSource(t, root, "src/Bad.sol", badSource)
	testutil.WriteSource(t, root, check.OverridesFileName, "[ignore]\nfiles = [\"src/Bad.sol\"]\n")

	got, err := runCheckCommand(t, root, "--format", "json")
	require.NoError(t, err)

	var out output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &out))

	assert.True(t, out.Success)
	assert.Equal(t, 3, out.Summary.FilesChecked)
	assert.Equal(t, 1, out.Summary.FilesIgnored)
}

func TestCheckCommand_CacheReplay(t *testing.T) {
	root := testutil.SetupTestProject(t)

	got, err := runCheckCommand(t, root, "--format", "json")
	require.NoError(t, err)

	var first output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &first))
	assert.Equal(t, 0, first.Summary.CacheHits)

	got, err = runCheckCommand(t, root, "--format", "json")
	require.NoError(t, err)

	var second output.CheckOutput
	require.NoError(t, json.Unmarshal([]byte(got), &second))
	assert.Equal(t, 3, second.Summary.CacheHits)
	assert.Equal(t, 3, second.Summary.FilesChecked)
	assert.True(t, second.Success)
}

func TestCheckCommand_InvalidFormat(t *testing.T) {
	root := testutil.SetupTestProject(t)

	_, err := runCheckCommand(t, root, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.NotErrorIs(t, err, ErrChecksFailed)
}

func TestCheckCommand_WatchRejectsSARIF(t *testing.T) {
	root := testutil.SetupTestProject(t)

	_, err := runCheckCommand(t, root, "--watch", "--format", "sarif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch mode does not support sarif")
}

func TestCheckCommand_MissingRoot(t *testing.T) {
	_, err := runCheckCommand(t, "/nonexistent/project/root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project root does not exist")
}

func TestCheckOutputFromReport(t *testing.T) {
	report := &engine.Report{
		ID:        "run-1",
		Root:      "/proj",
		Files:     3,
		Ignored:   1,
		CacheHits: 2,
		Findings: []check.Finding{
			{Rule: "test", Path: "test/Vault.t.sol", Line: 12, Message: "Invalid test name"},
		},
		Errors: []engine.FileError{
			{Path: "src/Broken.sol", Line: 2, Type: "parse", Message: "unbalanced braces at end of file"},
		},
		Warnings: []string{`override glob "lib/**" matches no checked file`},
		ByRule:   map[string]int{"test": 1},
		Duration: 42 * time.Millisecond,
	}

	out := checkOutputFromReport(report)

	assert.Equal(t, "run-1", out.ID)
	assert.Equal(t, "/proj", out.Root)
	assert.False(t, out.Success)
	assert.Equal(t, 3, out.Summary.FilesChecked)
	assert.Equal(t, 1, out.Summary.FilesIgnored)
	assert.Equal(t, 2, out.Summary.CacheHits)
	assert.Equal(t, 1, out.Summary.TotalFindings)
	assert.Equal(t, 1, out.Summary.TotalErrors)
	assert.Equal(t, "42ms", out.Duration)

	require.Len(t, out.Findings, 1)
	assert.Equal(t, "test", out.Findings[0].Rule)
	assert.Equal(t, 12, out.Findings[0].Line)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "parse", out.Errors[0].Type)
	assert.Len(t, out.Warnings, 1)
}

func TestCheckOutputFromReport_EmptyFindingsEncodeAsArray(t *testing.T) {
	out := checkOutputFromReport(&engine.Report{ByRule: map[string]int{}})

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"findings":[]`)
}

func TestRenderReport_GroupsFindingsByFile(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	report := &engine.Report{
		Findings: []check.Finding{
			{Rule: "src", Path: "src/A.sol", Line: 1, Message: "Missing SPDX-License-Identifier header"},
			{Rule: "src", Path: "src/A.sol", Line: 9, Message: "Function 'helper' should have underscore prefix"},
			{Rule: "constant", Path: "src/B.sol", Line: 3, Message: "Constant 'maxSupply' should be ALL_CAPS"},
		},
		ByRule: map[string]int{"src": 2, "constant": 1},
	}

	renderReport(tr.Renderer, report)

	got := tr.Output()
	assert.Equal(t, 1, strings.Count(got, "src/A.sol"), "file header should print once per file")
	assert.Equal(t, 1, strings.Count(got, "src/B.sol"))
	assert.Contains(t, got, "Checks failed")
	testutil.AssertNoANSI(t, got)
}

func TestRenderReport_Success(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	renderReport(tr.Renderer, &engine.Report{Files: 2, ByRule: map[string]int{}})

	assert.Contains(t, tr.Output(), "✓ All checks passed")
	assert.Contains(t, tr.Output(), "Files: 2 checked")
}

func TestRenderReport_WarningsGoToStderr(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	report := &engine.Report{
		Warnings: []string{`override glob "lib/**" matches no checked file`},
		ByRule:   map[string]int{},
	}
	renderReport(tr.Renderer, report)

	assert.Contains(t, tr.ErrorOutput(), "matches no checked file")
	assert.NotContains(t, tr.Output(), "matches no checked file")
}

func TestRenderFileErrors(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	renderFileErrors(tr.Renderer, []engine.FileError{
		{Path: "src/Broken.sol", Line: 4, Type: "parse", Message: "unterminated block comment"},
		{Path: "test/Flaky.t.sol", Type: "directive", Message: "unknown rule: 'bogus'"},
	})

	got := tr.Output()
	assert.Contains(t, got, "src/Broken.sol:4")
	assert.Contains(t, got, "parse")
	assert.Contains(t, got, "test/Flaky.t.sol")
	assert.Contains(t, got, "unknown rule")
}
