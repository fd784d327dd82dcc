package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/sitelog/pkg/site"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out receives JSON errors; color.Output when nil.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

type jsonError struct {
	Error  string            `json:"error"`
	Fields []site.FieldError `json:"fields,omitempty"`
}

// HandleError reports err as a JSON document in --json mode, listing field
// messages for validation errors, and returns nil so the document is the
// only output. Otherwise err is returned unchanged.
func (o *OutputOptions) HandleError(err error) error {
	if !o.JSON || err == nil {
		return err
	}
	doc := jsonError{Error: err.Error()}
	var ve *site.ValidationError
	if errors.As(err, &ve) {
		doc.Fields = ve.Errors
	}
	b, merr := json.Marshal(doc)
	if merr != nil {
		return merr
	}
	out := o.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, string(b))
	return nil
}
