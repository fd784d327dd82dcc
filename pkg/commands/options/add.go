package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FieldOptions collect form field assignments.
type FieldOptions struct {
	Set   []string
	Unset []string
}

func AddFieldArgs(cmd *cobra.Command, o *FieldOptions) {
	cmd.Flags().StringArrayVar(&o.Set, "set", nil,
		`Field assignment as name=value, repeatable, example: --set name="Бетон М300".`)
}

func AddUnsetArgs(cmd *cobra.Command, o *FieldOptions) {
	cmd.Flags().StringSliceVar(&o.Unset, "unset", nil,
		"Fields to clear.")
}

// Fields parses the --set assignments. The last assignment of a field wins.
func (o *FieldOptions) Fields() (map[string]string, error) {
	out := make(map[string]string, len(o.Set))
	for _, raw := range o.Set {
		name, value, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", raw)
		}
		out[name] = value
	}
	return out, nil
}
