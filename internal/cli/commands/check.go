package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/forgelint/forgelint/internal/engine"
	"github.com/forgelint/forgelint/pkg/check"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Path   string // project root override
	Format string // output format: text, json, sarif
	Watch  bool   // re-run checks when sources change
}

// NewCheckCommand creates the check command.
func NewCheckCommand(version string) *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check Solidity sources against the convention rules",
		Long: `Analyze the Solidity sources of a Foundry project.

Walks the src, script, and test roots and applies the convention rules
to every .sol file. Violations can be suppressed with inline
forgelint: directives or a .forgelint file at the project root.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/SARIF: Machine-readable formats`,
		Example: `  # Check the current project
  forgelint check

  # Check another project
  forgelint check ../my-vault

  # Machine-readable output
  forgelint check --format json

  # Upload results to a code scanner
  forgelint check --format sarif > results.sarif

  # Re-run on every source change
  forgelint check --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			return runCheck(cmd, opts, version)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, sarif")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch source roots and re-check on changes")

	// Register completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "sarif"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, version string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	// A positional path re-roots the whole run, resolver methods on the
	// config follow along.
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

	// Override renderer if format flag is set
	sarif := false
	switch opts.Format {
	case "":
	case "sarif":
		sarif = true
	case "text", "json":
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	default:
		return fmt.Errorf("invalid format %q (valid values: text, json, sarif)", opts.Format)
	}

	eng, err := createEngine(cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if opts.Watch {
		if sarif {
			return fmt.Errorf("watch mode does not support sarif output")
		}
		return watchChecks(cmd.Context(), eng, r)
	}

	report, err := eng.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("check run failed: %w", err)
	}

	if sarif {
		if err := writeSARIF(r.Writer(), report, version); err != nil {
			return fmt.Errorf("failed to encode sarif report: %w", err)
		}
	} else {
		renderReport(r, report)
	}

	if report.ExitCode() != 0 {
		return ErrChecksFailed
	}
	return nil
}

// watchChecks re-runs the checks on every source change and renders each
// report as it lands. It blocks until the context is cancelled and always
// maps to a clean exit, watch mode is interactive.
func watchChecks(ctx context.Context, eng *engine.Engine, r *output.Renderer) error {
	r.Muted("Watching for changes (press Ctrl+C to stop)")
	return eng.Watch(ctx, func(report *engine.Report, err error) {
		if err != nil {
			r.Warning(fmt.Sprintf("check run failed: %v", err))
			return
		}
		renderReport(r, report)
	})
}

// renderReport renders a run report in the renderer's effective mode.
func renderReport(r *output.Renderer, report *engine.Report) {
	for _, warning := range report.Warnings {
		r.Warning(warning)
	}

	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(checkOutputFromReport(report))
		return
	}

	if len(report.Findings) > 0 {
		renderFindings(r, report.Findings)
	}
	if len(report.Errors) > 0 {
		renderFileErrors(r, report.Errors)
	}

	if report.Success() {
		r.Success("All checks passed")
		r.Muted(report.Summary())
		return
	}
	r.Println(r.Styles().Error.Render("✗ Checks failed"))
	r.Muted(report.Summary())
}

// renderFindings prints findings grouped per file. The report orders
// findings by path, so one sequential pass groups them.
func renderFindings(r *output.Renderer, findings []check.Finding) {
	var lastPath string
	for _, f := range findings {
		if f.Path != lastPath {
			if lastPath != "" {
				r.Println("")
			}
			r.Println(r.Styles().FilePath.Render(f.Path))
			lastPath = f.Path
		}
		r.Printf("  %s  %s  %s\n",
			r.Styles().Muted.Render(fmt.Sprintf("%-5d", f.Line)),
			r.Styles().Bold.Render(fmt.Sprintf("%-8s", f.Rule)),
			f.Message,
		)
	}
	r.Println("")
}

// renderFileErrors prints per-file structural diagnostics: parse failures
// and malformed suppression directives.
func renderFileErrors(r *output.Renderer, errors []engine.FileError) {
	r.Header(2, "File Errors")
	for _, fe := range errors {
		loc := fe.Path
		if fe.Line > 0 {
			loc = fmt.Sprintf("%s:%d", fe.Path, fe.Line)
		}
		r.Printf("  %s  %s  %s\n",
			r.Styles().FilePath.Render(loc),
			r.Styles().Error.Render(fe.Type),
			fe.Message,
		)
	}
	r.Println("")
}

// checkOutputFromReport converts a run report into the JSON document.
func checkOutputFromReport(report *engine.Report) output.CheckOutput {
	out := output.CheckOutput{
		ID:      report.ID,
		Root:    report.Root,
		Success: report.Success(),
		Summary: output.CheckSummary{
			FilesChecked:  report.Files,
			FilesIgnored:  report.Ignored,
			CacheHits:     report.CacheHits,
			TotalFindings: len(report.Findings),
			TotalErrors:   len(report.Errors),
			ByRule:        report.ByRule,
		},
		Findings: make([]output.CheckFinding, 0, len(report.Findings)),
		Warnings: report.Warnings,
		Duration: report.Duration.String(),
	}
	for _, f := range report.Findings {
		out.Findings = append(out.Findings, output.CheckFinding{
			Rule:    f.Rule,
			Path:    f.Path,
			Line:    f.Line,
			Message: f.Message,
		})
	}
	for _, fe := range report.Errors {
		out.Errors = append(out.Errors, output.CheckFileError{
			Path:    fe.Path,
			Line:    fe.Line,
			Type:    fe.Type,
			Message: fe.Message,
		})
	}
	return out
}
