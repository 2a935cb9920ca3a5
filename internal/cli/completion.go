package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/layout"
	"github.com/matzehuels/graphscope/pkg/spatial"
)

var shells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphscope.

Besides subcommands, the scripts complete layout names for --layout, edge
modes for --edge-mode and .json files for graph arguments.

Bash:
  $ source <(graphscope completion bash)

Zsh:
  $ graphscope completion zsh > "${fpath[1]}/_graphscope"

Fish:
  $ graphscope completion fish | source

PowerShell:
  PS> graphscope completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}

// registerCompletions attaches dynamic completions to the flags and
// arguments that take a fixed vocabulary.
func registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("layout", completeLayouts)
	_ = root.RegisterFlagCompletionFunc("edge-mode", cobra.FixedCompletions([]string{
		spatial.EdgeBBox.String() + "\tindex link bounding boxes",
		spatial.EdgeMidpoint.String() + "\tindex link midpoints",
	}, cobra.ShellCompDirectiveNoFileComp))
	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "view", "inspect":
			sub.ValidArgsFunction = completeGraphFile
		}
	}
}

// completeLayouts lists the registered layout providers.
func completeLayouts(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range layout.NewDefaultRegistry(layout.GraphvizOptions{}).Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeGraphFile offers .json files for the single graph argument.
func completeGraphFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
