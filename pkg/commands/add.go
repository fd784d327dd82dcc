package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/add"
	"tableflip.dev/sitelog/pkg/site"
)

func formHelp(verb string) string {
	long := strings.Builder{}
	long.WriteString(verb + "\n\nFields per page:\n")
	for _, f := range site.Pages {
		long.WriteString(fmt.Sprintf("%s: %s\n", f, strings.Join(site.FormFields(f), ", ")))
	}
	return long.String()
}

func addAdd(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	fo := &options.FieldOptions{}

	cmd := &cobra.Command{
		Use:   "add <page>",
		Short: "add a record to a page",
		Long:  formHelp("Create a record. Fields are validated before anything is sent."),
		Example: `
sitelog add materials --set name=Бетон --set objectId=o1 --set quantity=12 --set unit=м3
sitelog add visits --set userId=u1 --set objectId=o1 --role inspector
`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: pageNames(),
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

			a := add.Add{
				Service: e.Service,
				Feature: feature,
				Scope:   e.Scope,
				Fields:  fields,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(a.Do(cmd.Context()))
		},
	}

	options.AddScopeArgs(cmd, so)
	options.AddFieldArgs(cmd, fo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
