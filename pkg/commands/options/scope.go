package options

import (
	"strings"

	"github.com/spf13/cobra"
)

// ScopeOptions select the project and the acting role.
type ScopeOptions struct {
	Scope string
	Role  string
}

func AddScopeArgs(cmd *cobra.Command, o *ScopeOptions) {
	cmd.Flags().StringVarP(&o.Scope, "scope", "p", "",
		"Project scope; defaults to the configured scope.")
	cmd.Flags().StringVar(&o.Role, "role", "",
		"Act as viewer, inspector or manager; defaults to the configured role.")
}

// Resolve prefers the flag and falls back to the configured value.
func (o *ScopeOptions) Resolve(scope, role string) (string, string) {
	if s := strings.TrimSpace(o.Scope); s != "" {
		scope = s
	}
	if r := strings.TrimSpace(o.Role); r != "" {
		role = r
	}
	return scope, role
}
