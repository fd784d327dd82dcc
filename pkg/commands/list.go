package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/list"
	"tableflip.dev/sitelog/pkg/runner/tui"
	"tableflip.dev/sitelog/pkg/site"
)

func addList(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	qo := &options.QueryOptions{}
	ido := &options.IDOptions{}
	i := &options.InteractiveOptions{}

	long := strings.Builder{}
	long.WriteString("List the records of a page.\n\n")
	long.WriteString("Pages and their filters:\n")
	for _, f := range site.Pages {
		long.WriteString(fmt.Sprintf("%s (%s): %s\n", f, f.Title(), strings.Join(site.FacetsOf(f), ", ")))
	}

	cmd := &cobra.Command{
		Use:   "list [page]",
		Short: "list events, materials, violations or visits",
		Long:  long.String(),
		Example: `
sitelog list materials --filter statuses=new --sort name
sitelog list violations --date 2024-03-01 --search бетон
sitelog list events --scope p1 --json
sitelog list visits -i
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			feature, err := featureArg(args, site.Events)
			if err != nil {
				return oo.HandleError(err)
			}
			if !feature.IsPage() {
				return oo.HandleError(fmt.Errorf("%s is not a page", feature))
			}
			query, err := qo.Query()
			if err != nil {
				return oo.HandleError(err)
			}
			stderr := cmd.ErrOrStderr()
			if i.Interactive {
				stderr = io.Discard
			}
			e, err := load(stderr, so)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			if i.Interactive {
				t := tui.TUI{Service: e.Service, Feature: feature, Scope: e.Scope, Snapshots: e.Snapshots}
				return t.Do(cmd.Context())
			}

			l := list.List{
				Service: e.Service,
				Feature: feature,
				Scope:   e.Scope,
				Query:   query,
				ShowID:  ido.ShowID,
				Width:   ido.Width,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	options.AddScopeArgs(cmd, so)
	options.AddQueryArgs(cmd, qo)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, oo)
	options.InteractiveArgs(cmd, i)

	topLevel.AddCommand(cmd)
}
