package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/seed"
	"tableflip.dev/sitelog/pkg/site"
)

func addImport(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}

	valid := pageNames()
	for _, f := range site.Lookups {
		valid = append(valid, string(f))
	}

	cmd := &cobra.Command{
		Use:   "import <resource> [file]",
		Short: "save a JSON array of records as the snapshot of a resource",
		Long: options.Wrap80(`Validate a JSON array of records and store it as the snapshot of the resource for the scope. ` +
			`Snapshots are what the other commands read when no API is configured or the API is unreachable. ` +
			`Reads stdin when the file is "-" or missing.`),
		Example: `
sitelog import users users.json
curl -s https://api.example/materials?project=p1 | sitelog import materials --scope p1
`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: valid,
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := site.ParseFeature(args[0])
			if err != nil {
				return err
			}
			path := ""
			if len(args) > 1 {
				path = args[1]
			}
			e, err := load(cmd.ErrOrStderr(), so)
			if err != nil {
				return err
			}
			defer e.Close()

			i := seed.Import{
				Snapshots: e.Snapshots,
				Feature:   feature,
				Scope:     e.Scope,
				Path:      path,
				In:        cmd.InOrStdin(),
				Out:       cmd.OutOrStdout(),
			}
			return i.Do(cmd.Context())
		},
	}

	options.AddScopeArgs(cmd, so)

	topLevel.AddCommand(cmd)
}
