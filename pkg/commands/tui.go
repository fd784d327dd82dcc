package commands

import (
	"io"

	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/tui"
	"tableflip.dev/sitelog/pkg/site"
)

func addTUI(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}

	cmd := &cobra.Command{
		Use:     "ui [page]",
		Aliases: []string{"tui"},
		Short:   "open the text-based user interface",
		Example: `
sitelog ui
sitelog ui violations --scope p1
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := featureArg(args, site.Events)
			if err != nil {
				return err
			}
			// Logs would draw over the screen; only a configured log file gets them.
			e, err := load(io.Discard, so)
			if err != nil {
				return err
			}
			defer e.Close()

			t := tui.TUI{Service: e.Service, Feature: feature, Scope: e.Scope, Snapshots: e.Snapshots}
			return t.Do(cmd.Context())
		},
	}

	options.AddScopeArgs(cmd, so)

	topLevel.AddCommand(cmd)
}
