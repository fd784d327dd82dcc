// Package list prints the derived view of one feature page.
package list

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/printers"
	"tableflip.dev/sitelog/pkg/site"
)

// List loads a page for a scope, applies a query and prints the result.
type List struct {
	Service *app.Service
	Feature site.Feature
	Scope   string
	Query   app.Query

	ShowID bool
	Width  int
	JSON   bool
	Out    io.Writer
}

// Output is the --json form of a listed page.
type Output struct {
	Feature site.Feature `json:"feature"`
	Scope   string       `json:"scope"`
	Total   int          `json:"total"`
	Count   int          `json:"count"`
	Sort    string       `json:"sort"`
	Stale   string       `json:"stale,omitempty"`
	Items   []any        `json:"items"`
}

func (l *List) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("list requires a service")
	}
	out := l.Out
	if out == nil {
		out = color.Output
	}

	session := l.Service.NewSession()
	defer session.Close()

	page, err := session.Page(l.Feature)
	if err != nil {
		return err
	}
	if err := page.Apply(l.Query); err != nil {
		return err
	}
	if err := session.Load(ctx, l.Scope, l.Feature); err != nil {
		return err
	}

	if l.JSON {
		o := Output{
			Feature: l.Feature,
			Scope:   l.Scope,
			Total:   page.Total(),
			Count:   page.Len(),
			Sort:    page.Sort().String(),
			Items:   page.Records(),
		}
		if err := page.Err(); err != nil {
			o.Stale = err.Error()
		}
		return printers.JSON(out, o)
	}

	pp := printers.PrettyPrint{Out: out, ShowID: l.ShowID, Width: l.Width}
	if err := page.Err(); err != nil {
		warn := color.New(color.FgYellow)
		_, _ = warn.Fprintf(out, "showing last known %s: %v\n", l.Feature, err)
	}
	pp.TitleWithCount(l.Feature.Title(), page.Len(), page.Total())
	pp.Filters(page.Filters(), site.SortLabel(page.Sort()))
	pp.Table(page.Headers(), page.Rows())
	return nil
}
