package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	fo := &options.FieldOptions{}

	cmd := &cobra.Command{
		Use:   "edit <page> <id>",
		Short: "change fields of a record",
		Long:  formHelp("Edit a record. Unmentioned fields keep their values."),
		Example: `
sitelog edit violations v1 --set status=resolved --unset dueDate
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := featureArg(args, "")
			if err != nil {
				return oo.HandleError(err)
			}
			fields, err := fo.Fields()
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := load(cmd.ErrOrStderr(), so)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ed := edit.Edit{
				Service: e.Service,
				Feature: feature,
				Scope:   e.Scope,
				ID:      args[1],
				Fields:  fields,
				Unset:   fo.Unset,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(ed.Do(cmd.Context()))
		},
	}

	options.AddScopeArgs(cmd, so)
	options.AddFieldArgs(cmd, fo)
	options.AddUnsetArgs(cmd, fo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
