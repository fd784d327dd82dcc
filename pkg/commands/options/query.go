package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/app"
)

// QueryOptions carry the list filters and sort.
type QueryOptions struct {
	Facets []string
	Date   string
	Search string
	Sort   string
}

func AddQueryArgs(cmd *cobra.Command, o *QueryOptions) {
	cmd.Flags().StringArrayVarP(&o.Facets, "filter", "f", nil,
		`Facet filter as name=value[,value], repeatable, example: --filter statuses=new,accepted.`)
	cmd.Flags().StringVar(&o.Date, "date", "",
		`Only records created on this day, example: --date=2024-03-01.`)
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Free-text search over the visible columns.")
	cmd.Flags().StringVar(&o.Sort, "sort", "",
		`Sort field, prefix with - for descending, example: --sort=-created.`)
}

// Query builds the app query. Values of a repeated facet accumulate.
func (o *QueryOptions) Query() (app.Query, error) {
	q := app.Query{Date: o.Date, Search: o.Search, Sort: o.Sort}
	for _, raw := range o.Facets {
		name, values, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return app.Query{}, fmt.Errorf("invalid filter %q, expected name=value", raw)
		}
		if q.Facets == nil {
			q.Facets = map[string][]string{}
		}
		q.Facets[name] = append(q.Facets[name], app.SplitValues(values)...)
	}
	return q, nil
}
