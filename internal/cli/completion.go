package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemadapt/pkg/correspondence"
)

// completionCommand prints a completion script for the requested shell.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script to stdout.

Besides subcommands and flag names, the script completes the values of
enumerated flags: --policy offers the network matching policies and
render --format offers svg, png, and dot. Graph arguments complete as
file names.

Examples:

  # current bash session
  $ source <(schemadapt completion bash)

  # zsh, installed once into the first fpath directory
  $ schemadapt completion zsh > "${fpath[1]}/_schemadapt"

  # fish
  $ schemadapt completion fish > ~/.config/fish/completions/schemadapt.fish

  # PowerShell, for the current session
  PS> schemadapt completion powershell | Out-String | Invoke-Expression

Open a new shell after installing a script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// policyNames lists the values --policy accepts.
var policyNames = []string{correspondence.PolicyChain, correspondence.PolicyMajority, correspondence.PolicyHistogram}

// completeValues offers a fixed set of values for flag. The flag must
// already be defined on cmd.
func completeValues(cmd *cobra.Command, flag string, values ...string) {
	err := cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		panic(err)
	}
}
