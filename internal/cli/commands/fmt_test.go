package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/forgelint/forgelint/internal/cli/testutil"
)

const forgeDiffOutput = `Diff in src/Vault.sol:
@@ -10,7 +10,7 @@
     function deposit(uint256 _amount) external {
-        shares=_convert(_amount);
+        shares = _convert(_amount);
     }
Diff in src/Token.sol:
@@ -3,2 +3,2 @@
-uint256 constant  MAX = 1;
+uint256 constant MAX = 1;
`

func TestFmtCommand_ForgeMissing(t *testing.T) {
	// An empty PATH makes the forge lookup fail regardless of what is
	// installed on the machine running the tests.
	t.Setenv("PATH", t.TempDir())

	cmd := NewFmtCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--check"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forge not found in PATH")
}

func TestRenderFmtDiff(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	files := renderFmtDiff(tr.Renderer, forgeDiffOutput)

	assert.Equal(t, 2, files)
	got := tr.Output()
	assert.Contains(t, got, "Diff in src/Vault.sol:")
	assert.Contains(t, got, "Diff in src/Token.sol:")
	assert.Contains(t, got, "+        shares = _convert(_amount);")
	testutil.AssertNoANSI(t, got)
}

func TestRenderFmtDiff_Empty(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	assert.Zero(t, renderFmtDiff(tr.Renderer, ""))
	assert.Zero(t, renderFmtDiff(tr.Renderer, "   \n"))
	assert.Empty(t, tr.Output())
}

func TestRenderFmtDiff_CountsOnlyFileHeaders(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)

	diff := "Diff in test/Vault.t.sol:\n@@ -1,1 +1,1 @@\n-a\n+b\n"
	assert.Equal(t, 1, renderFmtDiff(tr.Renderer, diff))
}
