package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/snapshots"
)

func addSnapshots(topLevel *cobra.Command) {
	var (
		scope  string
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "snapshots [resource]",
		Short: "list or delete saved snapshots",
		Example: `
sitelog snapshots
sitelog snapshots materials --scope p1 --delete
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(cmd.ErrOrStderr(), nil)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := snapshots.Snapshots{
				Store:  e.Snapshots,
				Scope:  scope,
				Delete: remove,
				JSON:   oo.JSON,
				Out:    cmd.OutOrStdout(),
			}
			if len(args) > 0 {
				s.Resource = args[0]
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "p", "", "Only snapshots of this scope.")
	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the matching snapshots.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
