package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/forgelint/forgelint/pkg/check"
	"github.com/forgelint/forgelint/pkg/solidity"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SpecOptions holds options for the spec command.
type SpecOptions struct {
	Path         string // project root override
	Format       string // output format: text, markdown, json, yaml
	ShowInternal bool   // list non-test helper functions
	Interactive  bool   // browse the specification in a TUI
}

// NewSpecCommand creates the spec command.
func NewSpecCommand() *cobra.Command {
	opts := &SpecOptions{}
	cmd := &cobra.Command{
		Use:   "spec [path]",
		Short: "Generate a behavior specification from test names",
		Long: `Derive a human-readable specification from the test suite.

Convention-named tests double as behavior sentences:

  test_Increment                     Increment
  test_RevertWhen_CallerIsNotOwner   Reverts when caller is not owner
  testFuzz_Deposit                   Deposit (fuzz)

The sentences are grouped per test contract. Test files that do not
parse are skipped with a warning.`,
		Example: `  # Print the specification
  forgelint spec

  # Include non-test helper functions
  forgelint spec --show-internal

  # Machine-readable formats
  forgelint spec --format json
  forgelint spec --format yaml

  # Browse interactively
  forgelint spec -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runSpec(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")
	cmd.Flags().BoolVar(&opts.ShowInternal, "show-internal", false, "List non-test helper functions per contract")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Browse the specification in a TUI")

	// Register completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runSpec(cmd *cobra.Command, opts *SpecOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if opts.Path != "" {
		abs, err := filepath.Abs(opts.Path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", opts.Path, err)
		}
		cfg.ProjectRoot = abs
		applyProjectLayout(cmd, cfg, cmdCtx.Logger)
	}
	if err := cfg.ValidateProjectRoot(); err != nil {
		return err
	}

	// Override renderer if format flag is set. YAML is spec-specific and
	// handled outside the renderer modes.
	yamlOut := false
	switch opts.Format {
	case "":
	case "yaml":
		yamlOut = true
	case "text", "markdown", "json":
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	default:
		return fmt.Errorf("invalid format %q (valid values: text, markdown, json, yaml)", opts.Format)
	}

	spec, skipped, err := collectSpec(cfg.ProjectRoot, cfg.CheckPaths(), opts.ShowInternal)
	if err != nil {
		return fmt.Errorf("failed to read test sources: %w", err)
	}
	for _, path := range skipped {
		r.Warning(fmt.Sprintf("skipping unparseable test file %s", path))
	}

	if opts.Interactive {
		return browseSpec(cmd, r, spec)
	}

	if yamlOut {
		data, err := yaml.Marshal(spec)
		if err != nil {
			return fmt.Errorf("failed to encode spec: %w", err)
		}
		_, err = r.Writer().Write(data)
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(spec)
	case output.ModeMarkdown:
		renderSpecMarkdown(r, spec)
	default:
		renderSpecText(r, spec)
	}
	return nil
}

// collectSpec walks the test root and derives behavior sentences from
// every convention-named test. Files that fail to parse are returned in
// the skipped list instead of aborting the walk.
func collectSpec(root string, paths check.Paths, showInternal bool) (*output.SpecOutput, []string, error) {
	spec := &output.SpecOutput{Root: root}
	testRoot := filepath.Join(root, filepath.FromSlash(paths.Test))

	info, err := os.Stat(testRoot)
	if os.IsNotExist(err) {
		return spec, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return spec, nil, nil
	}

	var skipped []string
	err = filepath.WalkDir(testRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sol") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = check.NormalizePath(rel)

		// Helpers and invariant handlers carry no behavior sentences.
		if check.Classify(rel, paths) != check.KindTest {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		file, err := solidity.Parse(rel, string(src))
		if err != nil {
			skipped = append(skipped, rel)
			return nil
		}

		spec.TestFiles++
		for _, c := range file.Contracts() {
			contract := specFromContract(c, rel, showInternal)
			spec.Tests += len(contract.Behaviors)
			if len(contract.Behaviors) > 0 || len(contract.Helpers) > 0 {
				spec.Contracts = append(spec.Contracts, contract)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(spec.Contracts, func(i, j int) bool {
		return spec.Contracts[i].Name < spec.Contracts[j].Name
	})
	return spec, skipped, nil
}

// specFromContract converts one contract's test functions into behavior
// sentences in source order.
func specFromContract(c *solidity.Contract, file string, showInternal bool) output.SpecContract {
	contract := output.SpecContract{Name: c.Name, File: file}
	for _, fn := range c.Functions() {
		if fn.Kind != solidity.FuncRegular || fn.Name == "" {
			continue
		}
		if strings.HasPrefix(fn.Name, "test") && fn.Visibility.IsExposed() {
			contract.Behaviors = append(contract.Behaviors, output.SpecBehavior{
				Sentence: behaviorSentence(fn.Name),
				Test:     fn.Name,
				Line:     fn.Span.Start.Line,
			})
			continue
		}
		if showInternal && fn.Name != "setUp" {
			contract.Helpers = append(contract.Helpers, fn.Name)
		}
	}
	return contract
}

var titleCaser = cases.Title(language.English)

// behaviorSentence converts a convention-named test into a readable
// behavior sentence: test_RevertWhen_CallerIsNotOwner becomes
// "Reverts when caller is not owner". Names outside the convention are
// returned unchanged.
func behaviorSentence(name string) string {
	rest := strings.TrimPrefix(name, "test")

	var notes []string
	if strings.HasPrefix(rest, "Fork") {
		rest = strings.TrimPrefix(rest, "Fork")
		notes = append(notes, "fork")
	}
	if strings.HasPrefix(rest, "Fuzz") {
		rest = strings.TrimPrefix(rest, "Fuzz")
		notes = append(notes, "fuzz")
	}

	var lead string
	switch {
	case strings.HasPrefix(rest, "_RevertIf_"):
		lead = "Reverts if"
		rest = strings.TrimPrefix(rest, "_RevertIf_")
	case strings.HasPrefix(rest, "_RevertWhen_"):
		lead = "Reverts when"
		rest = strings.TrimPrefix(rest, "_RevertWhen_")
	case strings.HasPrefix(rest, "_RevertOn_"):
		lead = "Reverts on"
		rest = strings.TrimPrefix(rest, "_RevertOn_")
	default:
		rest = strings.TrimPrefix(rest, "_")
	}

	words := splitCamelWords(rest)
	sentence := strings.Join(words, " ")
	switch {
	case lead != "" && sentence != "":
		sentence = lead + " " + sentence
	case lead != "":
		sentence = lead
	case sentence != "":
		if first := words[0]; strings.ToUpper(first) != first {
			words[0] = titleCaser.String(first)
		}
		sentence = strings.Join(words, " ")
	default:
		return name
	}

	if len(notes) > 0 {
		sentence += " (" + strings.Join(notes, ", ") + ")"
	}
	return sentence
}

// splitCamelWords splits a CamelCase description into lowercase words,
// keeping all-caps runs like EIP712 or ERC20 intact. Underscores act as
// word separators.
func splitCamelWords(s string) []string {
	var words []string
	for _, chunk := range strings.Split(s, "_") {
		words = append(words, camelToWords(chunk)...)
	}
	return words
}

func camelToWords(s string) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev))
		// An upper run followed by a lower letter starts a new word at
		// the run's last letter: HTTPServer splits as HTTP, Server.
		if i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			words = append(words, formatWord(string(runes[start:i])))
			start = i
		}
	}
	words = append(words, formatWord(string(runes[start:])))
	return words
}

// formatWord lowercases regular words and preserves acronyms.
func formatWord(w string) string {
	if len(w) > 1 && strings.ToUpper(w) == w {
		return w
	}
	return strings.ToLower(w)
}

// renderSpecText prints the specification as styled text with a summary
// table.
func renderSpecText(r *output.Renderer, spec *output.SpecOutput) {
	styles := r.Styles()

	if len(spec.Contracts) == 0 {
		r.Muted("No convention-named tests found")
		return
	}

	r.Println("")
	r.Println(styles.Header1.Render("Behavior Specification"))
	r.Println("")

	for _, contract := range spec.Contracts {
		r.Printf("%s %s\n",
			styles.Header2.Render(contract.Name),
			styles.Muted.Render("("+contract.File+")"),
		)
		for _, b := range contract.Behaviors {
			r.Printf("  - %s\n", b.Sentence)
		}
		if len(contract.Helpers) > 0 {
			r.Println(styles.Muted.Render("  helpers: " + strings.Join(contract.Helpers, ", ")))
		}
		r.Println("")
	}

	renderSpecSummaryTable(r, spec)
}

// renderSpecSummaryTable prints per-contract behavior counts.
func renderSpecSummaryTable(r *output.Renderer, spec *output.SpecOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Contract", "Behaviors", "File"})
	for _, contract := range spec.Contracts {
		t.AppendRow(table.Row{contract.Name, len(contract.Behaviors), contract.File})
	}
	t.AppendFooter(table.Row{"Total", spec.Tests, fmt.Sprintf("%d files", spec.TestFiles)})
	t.Render()
}

// renderSpecMarkdown prints the specification as markdown.
func renderSpecMarkdown(r *output.Renderer, spec *output.SpecOutput) {
	r.Println("# Behavior Specification")
	r.Println("")
	r.Printf("%d behaviors across %d contracts (%d test files)\n",
		spec.Tests, len(spec.Contracts), spec.TestFiles)
	r.Println("")

	for _, contract := range spec.Contracts {
		r.Println(output.FormatHeader(2, contract.Name))
		r.Println("")
		r.Println(output.FormatKeyValue("File", contract.File))
		r.Println("")
		for _, b := range contract.Behaviors {
			r.Printf("- %s (`%s`)\n", b.Sentence, b.Test)
		}
		if len(contract.Helpers) > 0 {
			r.Println("")
			r.Printf("Helpers: `%s`\n", strings.Join(contract.Helpers, "`, `"))
		}
		r.Println("")
	}
}
