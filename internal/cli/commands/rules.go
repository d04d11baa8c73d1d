package commands

import (
	"fmt"
	"strings"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/forgelint/forgelint/pkg/check"
	_ "github.com/forgelint/forgelint/pkg/check/rules" // register the rule set
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Kind    string // filter by file kind
	Verbose bool   // show full documentation
	Format  string // output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the convention rules",
		Long: `List the convention rules with their documentation.

Each rule applies to one or more file kinds (src, script, test). Use
--verbose to see full documentation including examples.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  forgelint rules

  # Show details for a specific rule
  forgelint rules constant

  # List rules that apply to test files
  forgelint rules --kind test

  # Show full documentation
  forgelint rules -V

  # Output as JSON
  forgelint rules --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Filter by file kind: src, script, test")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	// Register completion for rule IDs
	cmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return check.IDs(), cobra.ShellCompDirectiveNoFileComp
	}

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	// Registry order is already sorted by ID
	rules := check.GetAll()
	if opts.Kind != "" {
		kind, err := kindFromName(opts.Kind)
		if err != nil {
			return err
		}
		rules = check.GetByKind(kind)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, opts.Verbose)
	default:
		return listRulesText(r, rules, opts.Verbose)
	}
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	rule, ok := check.GetByID(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found (valid rules: %s)", ruleID, strings.Join(check.IDs(), ", "))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(ruleDocFromDef(rule))
	case output.ModeMarkdown:
		return showRuleMarkdown(r, rule)
	default:
		return showRuleText(r, rule)
	}
}

// kindFromName maps a CLI kind name onto the file classification.
func kindFromName(name string) (check.FileKind, error) {
	for _, k := range []check.FileKind{
		check.KindSrc, check.KindScript, check.KindScriptHelper,
		check.KindTest, check.KindTestHelper, check.KindHandler,
	} {
		if k.String() == name {
			return k, nil
		}
	}
	return check.KindOther, fmt.Errorf("unknown file kind %q (valid kinds: src, script, script-helper, test, test-helper, handler)", name)
}

// appliesTo renders the kinds a rule is restricted to.
func appliesTo(rule check.RuleDef) string {
	if len(rule.Kinds) == 0 {
		return "all files"
	}
	names := make([]string, 0, len(rule.Kinds))
	for _, k := range rule.Kinds {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ") + " files"
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []check.RuleDef, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Convention Rules (%d)", len(rules))))
	r.Println("")

	for _, rule := range rules {
		r.Printf("  %s  %s - %s\n",
			styles.Bold.Render(fmt.Sprintf("%-9s", rule.ID)),
			rule.Name,
			styles.Muted.Render(appliesTo(rule)),
		)

		if verbose {
			r.Println(styles.Muted.Render("             " + rule.Description))
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("             Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'forgelint rules <rule-id>' for detailed documentation"))
	r.Println("")

	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []check.RuleDef, verbose bool) error {
	r.Println("# Convention Rules")
	r.Println("")

	for _, rule := range rules {
		r.Printf("- **%s** - %s (%s)\n", rule.ID, rule.Name, appliesTo(rule))
		if verbose {
			r.Println("  " + rule.Description)
			if rule.Rationale != "" {
				r.Println("  > " + rule.Rationale)
			}
		}
	}

	r.Println("")
	return nil
}

// ruleDoc is the JSON shape of one rule's documentation.
type ruleDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kinds       []string `json:"kinds,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	BadExample  string   `json:"bad_example,omitempty"`
	GoodExample string   `json:"good_example,omitempty"`
}

func ruleDocFromDef(rule check.RuleDef) ruleDoc {
	doc := ruleDoc{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Rationale:   rule.Rationale,
		BadExample:  rule.BadExample,
		GoodExample: rule.GoodExample,
	}
	for _, k := range rule.Kinds {
		doc.Kinds = append(doc.Kinds, k.String())
	}
	return doc
}

// RulesJSONOutput is the JSON output structure for the rules listing.
type RulesJSONOutput struct {
	Rules []ruleDoc `json:"rules"`
	Count int       `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []check.RuleDef) error {
	jsonOutput := RulesJSONOutput{
		Rules: make([]ruleDoc, 0, len(rules)),
		Count: len(rules),
	}
	for _, rule := range rules {
		jsonOutput.Rules = append(jsonOutput.Rules, ruleDocFromDef(rule))
	}
	return r.JSON(jsonOutput)
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule check.RuleDef) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Applies to"), appliesTo(rule))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	return nil
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule check.RuleDef) error {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Applies to:** %s\n\n", appliesTo(rule))
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println(output.FormatCodeBlock("solidity", rule.BadExample))
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println(output.FormatCodeBlock("solidity", rule.GoodExample))
		r.Println("")
	}

	return nil
}

// Helper functions

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
