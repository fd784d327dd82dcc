package commands

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/config"
	"tableflip.dev/sitelog/pkg/store"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(sitelog completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(sitelog completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(cmd.OutOrStdout())
		},
	}

	topLevel.AddCommand(cmd)
}

// scopeCompletions offers the scopes that have snapshots.
func scopeCompletions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	snaps, err := store.Open(cfg, zerolog.Nop())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	seen := map[string]bool{}
	var out []string
	for _, k := range snaps.Keys(context.Background()) {
		if k.Scope == "" || seen[k.Scope] {
			continue
		}
		seen[k.Scope] = true
		out = append(out, strconv.Quote(k.Scope))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
