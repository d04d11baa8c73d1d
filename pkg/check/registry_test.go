package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelint/forgelint/pkg/check"
	_ "github.com/forgelint/forgelint/pkg/check/rules" // register rules
)

func ruleIDs(rules []check.RuleDef) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRegistryRoster(t *testing.T) {
	assert.Equal(t, 8, check.Count())
	assert.Equal(t,
		[]string{"constant", "eip712", "error", "import", "script", "src", "test", "variable"},
		check.IDs())
}

func TestRegistryLookup(t *testing.T) {
	rule, ok := check.GetByID("eip712")
	require.True(t, ok)
	assert.Equal(t, "eip712", rule.ID)
	assert.True(t, rule.AppliesTo(check.KindSrc))
	assert.False(t, rule.AppliesTo(check.KindTest))

	_, ok = check.GetByID("no-such")
	assert.False(t, ok)
	assert.False(t, check.IsRule("no-such"))
	assert.True(t, check.IsRule("variable"))
}

func TestRegistryByKind(t *testing.T) {
	tests := []struct {
		kind check.FileKind
		want []string
	}{
		{check.KindSrc, []string{"constant", "eip712", "error", "import", "src", "variable"}},
		{check.KindTest, []string{"constant", "error", "import", "test", "variable"}},
		{check.KindHandler, []string{"constant", "error", "import", "variable"}},
		{check.KindScript, []string{"constant", "import", "script", "variable"}},
		{check.KindScriptHelper, []string{"constant", "import"}},
		{check.KindTestHelper, []string{"constant", "import"}},
		{check.KindOther, []string{"constant", "import"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ruleIDs(check.GetByKind(tt.kind)))
		})
	}
}

func TestRegistryMetadataComplete(t *testing.T) {
	for _, rule := range check.GetAll() {
		assert.NotEmpty(t, rule.Name, "rule %s has no name", rule.ID)
		assert.NotEmpty(t, rule.Description, "rule %s has no description", rule.ID)
		assert.NotNil(t, rule.Check, "rule %s has no check function", rule.ID)
		assert.NotEmpty(t, rule.Rationale, "rule %s has no rationale", rule.ID)
		assert.NotEmpty(t, rule.BadExample, "rule %s has no bad example", rule.ID)
		assert.NotEmpty(t, rule.GoodExample, "rule %s has no good example", rule.ID)
	}
}
