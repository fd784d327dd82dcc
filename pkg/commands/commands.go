package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "sitelog",
		Short: options.Wrap80("Construction site journals on the command line: events, materials, violations and visits."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addRemove(topLevel)
	addImport(topLevel)
	addSnapshots(topLevel)
	addServe(topLevel)
	addTUI(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)

	for _, cmd := range topLevel.Commands() {
		if cmd.Flags().Lookup("scope") != nil {
			_ = cmd.RegisterFlagCompletionFunc("scope", scopeCompletions)
		}
	}
}
