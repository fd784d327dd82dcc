package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}

	cmd := &cobra.Command{
		Use:     "remove <page> <id>",
		Aliases: []string{"rm", "delete"},
		Short:   "delete a record",
		Example: `
sitelog remove materials m1 --role manager
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := featureArg(args, "")
			if err != nil {
				return err
			}
			e, err := load(cmd.ErrOrStderr(), so)
			if err != nil {
				return err
			}
			defer e.Close()

			r := remove.Remove{
				Service: e.Service,
				Feature: feature,
				Scope:   e.Scope,
				ID:      args[1],
				Out:     cmd.OutOrStdout(),
			}
			return r.Do(cmd.Context())
		},
	}

	options.AddScopeArgs(cmd, so)

	topLevel.AddCommand(cmd)
}
