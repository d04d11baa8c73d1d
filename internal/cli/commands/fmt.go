package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/spf13/cobra"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Check bool // report formatting diffs without rewriting files
}

// NewFmtCommand creates the fmt command, a thin wrapper around forge fmt.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}
	cmd := &cobra.Command{
		Use:   "fmt [path...]",
		Short: "Format Solidity sources with forge fmt",
		Long: `Format the Solidity sources of the project.

Formatting is delegated to forge fmt, so the Foundry toolchain must be
installed. With --check no file is rewritten and a diff of the required
changes is printed instead.`,
		Example: `  # Format the whole project
  forgelint fmt

  # Verify formatting in CI
  forgelint fmt --check

  # Format specific paths
  forgelint fmt src/Vault.sol`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Report diffs without writing to files")

	return cmd
}

func runFmt(cmd *cobra.Command, opts *FmtOptions, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	forgeBin, err := exec.LookPath("forge")
	if err != nil {
		return fmt.Errorf("forge not found in PATH, install Foundry to use fmt: %w", err)
	}

	forgeArgs := []string{"fmt"}
	if opts.Check {
		forgeArgs = append(forgeArgs, "--check")
	}
	forgeArgs = append(forgeArgs, args...)

	forge := exec.CommandContext(cmd.Context(), forgeBin, forgeArgs...)
	forge.Dir = cfg.ProjectRoot

	if !opts.Check {
		// Plain passthrough, forge reports what it rewrote.
		forge.Stdout = cmd.OutOrStdout()
		forge.Stderr = cmd.ErrOrStderr()
		if err := forge.Run(); err != nil {
			return fmt.Errorf("forge fmt failed: %w", err)
		}
		return nil
	}

	var stdout bytes.Buffer
	forge.Stdout = &stdout
	forge.Stderr = cmd.ErrOrStderr()

	runErr := forge.Run()
	dirty := renderFmtDiff(r, stdout.String())

	if runErr != nil {
		// A nonzero exit alongside diff output means files need
		// formatting, anything else is a genuine forge failure.
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && stdout.Len() > 0 {
			r.Println("")
			if dirty > 0 {
				r.Println(r.Styles().Error.Render(fmt.Sprintf("✗ %d file(s) need formatting", dirty)))
			} else {
				r.Println(r.Styles().Error.Render("✗ Formatting differences found"))
			}
			return ErrChecksFailed
		}
		return fmt.Errorf("forge fmt failed: %w", runErr)
	}

	r.Success("All files formatted")
	return nil
}

// renderFmtDiff colorizes the diff from forge fmt --check and returns
// the number of files with differences.
func renderFmtDiff(r *output.Renderer, diff string) int {
	if strings.TrimSpace(diff) == "" {
		return 0
	}

	styles := r.Styles()
	files := 0
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "Diff in "):
			files++
			r.Println(styles.FilePath.Render(line))
		case strings.HasPrefix(line, "+"):
			r.Println(styles.Success.Render(line))
		case strings.HasPrefix(line, "-"):
			r.Println(styles.Error.Render(line))
		case strings.HasPrefix(line, "@@"):
			r.Println(styles.Info.Render(line))
		default:
			r.Println(line)
		}
	}
	return files
}
