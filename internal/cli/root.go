// Package cli provides the forgelint command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/forgelint/forgelint/internal/cli/commands"
	"github.com/forgelint/forgelint/internal/cli/config"
	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forgelint",
		Short: "forgelint - Convention checks for Foundry projects",
		Long: `forgelint statically checks the Solidity sources of a Foundry project
against a fixed set of naming and layout conventions.

It walks the src, script and test roots, applies the convention rules to
every file and reports the violations that survive the inline forgelint:
directives and the .forgelint suppression config.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			// Build the logger, --verbose lowers the level to debug
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if warn := config.GetFoundryWarning(); warn != "" {
				logger.Warn("ignoring malformed foundry.toml", "error", warn)
			}

			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			// Print config file used (if verbose)
			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using settings file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Convention checks for Foundry projects
`)

	// Global persistent flags
	rootCmd.PersistentFlags().String("root", "", "Project root (default: inferred from foundry.toml)")
	rootCmd.PersistentFlags().String("src-dir", "", "Path to the contracts directory")
	rootCmd.PersistentFlags().String("script-dir", "", "Path to the deploy scripts directory")
	rootCmd.PersistentFlags().String("test-dir", "", "Path to the tests directory")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the .forgelint suppression file")
	rootCmd.PersistentFlags().String("cache", "", "Path to the findings cache database")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Number of files checked concurrently (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the findings cache")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewCheckCommand(Version))
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewSpecCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command and returns the process exit code: 0 on
// success, 1 when checks found violations, 2 on any other failure.
func Execute() int {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, commands.ErrChecksFailed) {
		// The report has already been rendered.
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for forgelint.

To load completions:

Bash:
  $ source <(forgelint completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ forgelint completion bash > /etc/bash_completion.d/forgelint
  # macOS:
  $ forgelint completion bash > $(brew --prefix)/etc/bash_completion.d/forgelint

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ forgelint completion zsh > "${fpath[1]}/_forgelint"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ forgelint completion fish | source

  # To load completions for each session, execute once:
  $ forgelint completion fish > ~/.config/fish/completions/forgelint.fish

PowerShell:
  PS> forgelint completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> forgelint completion powershell > forgelint.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
	return cmd
}
