package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how to generate and install completions for one
// shell. target is empty when --install is not supported.
type shellCompletion struct {
	generate func(w io.Writer) error
	load     string
	target   func(home string) string
	after    []string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		load:     `eval "$(sta completion bash)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "sta")
		},
		after: []string{"Restart your shell or source the file above."},
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		load:     `eval "$(sta completion zsh)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_sta")
		},
		after: []string{
			"Ensure the directory above is in your fpath. Add to ~/.zshrc if needed:",
			"  fpath=(~/.local/share/zsh/site-functions $fpath)",
			"  autoload -Uz compinit && compinit",
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		load:     "sta completion fish | source",
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "sta.fish")
		},
		after: []string{"Completions will be available in new fish sessions automatically."},
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		load:     "sta completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for sta",
	Long: `Set up shell tab-completions for sta commands, flags, task ids and
strategy names.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script under your home directory):

  sta completion bash --install
  sta completion zsh --install
  sta completion fish --install

Or print the completion script to stdout:

  sta completion bash`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions under your home directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := shellCompletions[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		return installCompletion(cmd, args[0], shell)
	}

	// Hints go to stderr so piping the script stays clean.
	hints := cmd.ErrOrStderr()
	fmt.Fprintln(hints, "# To load completions in your current session:")
	fmt.Fprintf(hints, "#   %s\n", shell.load)
	if shell.target != nil {
		fmt.Fprintf(hints, "# To install permanently:\n#   sta completion %s --install\n", args[0])
	}
	return shell.generate(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, name string, shell shellCompletion) error {
	if shell.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'sta completion %s' and add the output to your profile", name, name)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := shell.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := shell.generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	for _, line := range shell.after {
		fmt.Fprintln(out, line)
	}
	return nil
}
