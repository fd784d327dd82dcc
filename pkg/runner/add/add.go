// Package add creates a record through a page's add form.
package add

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/printers"
	"tableflip.dev/sitelog/pkg/site"
)

type Add struct {
	Service *app.Service
	Feature site.Feature
	Scope   string
	Fields  map[string]string

	JSON bool
	Out  io.Writer
}

func (a *Add) Do(ctx context.Context) error {
	if a.Service == nil {
		return errors.New("can not add, no service")
	}
	out := a.Out
	if out == nil {
		out = color.Output
	}

	session := a.Service.NewSession()
	defer session.Close()
	page, err := session.Page(a.Feature)
	if err != nil {
		return err
	}
	if err := session.Load(ctx, a.Scope, a.Feature); err != nil {
		return err
	}

	draft := page.OpenAdd()
	for field, value := range a.Fields {
		draft.Set(field, value)
	}
	if err := page.SubmitAdd(ctx); err != nil {
		return err
	}

	if a.JSON {
		return printers.JSON(out, page.Records())
	}
	pp := printers.PrettyPrint{Out: out, ShowID: true}
	pp.TitleWithCount(a.Feature.Title(), page.Len(), page.Total())
	pp.Table(page.Headers(), page.Rows())
	return nil
}
