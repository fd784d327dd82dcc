// Package remove deletes a record.
package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/printers"
	"tableflip.dev/sitelog/pkg/site"
)

type Remove struct {
	Service *app.Service
	Feature site.Feature
	Scope   string
	ID      string

	Out io.Writer
}

func (r *Remove) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not remove, no service")
	}
	out := r.Out
	if out == nil {
		out = color.Output
	}

	session := r.Service.NewSession()
	defer session.Close()
	page, err := session.Page(r.Feature)
	if err != nil {
		return err
	}
	if err := session.Load(ctx, r.Scope, r.Feature); err != nil {
		return err
	}
	if !page.ConfirmDeleteID(r.ID) {
		return fmt.Errorf("no %s with id %q in scope %q", r.Feature, r.ID, r.Scope)
	}
	if err := page.SubmitDelete(ctx); err != nil {
		page.CloseDelete()
		return err
	}

	pp := printers.PrettyPrint{Out: out, ShowID: true}
	pp.TitleWithCount(r.Feature.Title(), page.Len(), page.Total())
	pp.Table(page.Headers(), page.Rows())
	return nil
}
