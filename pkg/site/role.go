package site

import (
	"fmt"
	"strings"
)

// Role is the capability level of the current user.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleInspector Role = "inspector"
	RoleManager   Role = "manager"
)

// Capability names a mutating operation.
type Capability string

const (
	CanAdd    Capability = "add"
	CanEdit   Capability = "edit"
	CanDelete Capability = "delete"
)

// ParseRole reads a role name. An empty name is a viewer.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RoleViewer, nil
	case RoleViewer, RoleInspector, RoleManager:
		return r, nil
	default:
		return RoleViewer, fmt.Errorf("unknown role %q", raw)
	}
}

// Can reports whether r may perform capability on feature. Inspectors may add
// and edit violations and visits; managers may do everything.
func (r Role) Can(capability Capability, feature Feature) bool {
	switch r {
	case RoleManager:
		return true
	case RoleInspector:
		if capability == CanDelete {
			return false
		}
		return feature == Violations || feature == Visits
	default:
		return false
	}
}

// Require returns ErrForbidden when r may not perform capability.
func (r Role) Require(capability Capability, feature Feature) error {
	if r.Can(capability, feature) {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s %s", ErrForbidden, r, capability, feature)
}
