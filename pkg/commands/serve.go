package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/commands/options"
	"tableflip.dev/sitelog/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	so := &options.ScopeOptions{}
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the pages as a local JSON API",
		Long: options.Wrap80(`Serve the pages as read-only JSON. GET /api/{resource}?scope=... returns the raw ` +
			`collection, GET /api/{page}/view?scope=...&sort=...&search=...&date=... the filtered, sorted rows ` +
			`and GET /api/{page}/facets/{facet} the values a facet can take.`),
		Example: `
sitelog serve --addr 127.0.0.1:8090 --role manager
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(cmd.ErrOrStderr(), so)
			if err != nil {
				return err
			}
			defer e.Close()

			s := serve.Serve{
				Service:   e.Service,
				Snapshots: e.Snapshots,
				Addr:      addr,
				Log:       e.Log.Logger,
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", a)
				},
			}
			return s.Do(cmd.Context())
		},
	}

	options.AddScopeArgs(cmd, so)
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8090", "Listen address.")

	topLevel.AddCommand(cmd)
}
