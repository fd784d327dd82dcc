// Package edit changes fields of an existing record.
package edit

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

type Edit struct {
	Service *app.Service
	Feature site.Feature
	Scope   string
	ID      string
	Fields  map[string]string
	// Unset lists fields to clear.
	Unset []string

	JSON bool
	Out  io.Writer
}

func (e *Edit) Do(ctx context.Context) error {
	if e.Service == nil {
		return errors.New("can not edit, no service")
	}
	out := e.Out
	if out == nil {
		out = color.Output
	}

	session := e.Service.NewSession()
	defer session.Close()
	page, err := session.Page(e.Feature)
	if err != nil {
		return err
	}
	if err := session.Load(ctx, e.Scope, e.Feature); err != nil {
		return err
	}
	if !page.SelectID(e.ID) {
		return fmt.Errorf("no %s with id %q in scope %q", e.Feature, e.ID, e.Scope)
	}

	draft := page.EditDraft()
	for field, value := range e.Fields {
		draft.Set(field, value)
	}
	for _, field := range e.Unset {
		draft.Unset(field)
	}
	if err := page.SubmitEdit(ctx); err != nil {
		return err
	}

	if e.JSON {
		return printers.JSON(out, page.EditDraft().Snapshot().Map())
	}
	pp := printers.PrettyPrint{Out: out, ShowID: true}
	pp.TitleWithCount(e.Feature.Title(), page.Len(), page.Total())
	pp.Table(page.Headers(), page.Rows())
	return nil
}
