package collection

import "fmt"

// ChangeType enumerates the mutations a Store can announce.
type ChangeType string

const (
	// ChangeReplace indicates the whole collection was swapped (fetch, scope
	// switch or explicit Replace).
	ChangeReplace ChangeType = "replace"
	// ChangeUpsert indicates a single item was inserted or replaced.
	ChangeUpsert ChangeType = "upsert"
	// ChangeRemove indicates a single item was deleted.
	ChangeRemove ChangeType = "remove"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Store    string
	Action   ChangeType
	ID       string
	Scope    string
	Revision uint64

	// ScopeChanged is set on replace changes that moved the store to a
	// different scope.
	ScopeChanged bool
}

// Describe renders the change in a compact form for logs.
func (c Change) Describe() string {
	if c.ID != "" {
		return fmt.Sprintf(`store:%q action:%q id:%q rev:%d`, c.Store, c.Action, c.ID, c.Revision)
	}
	return fmt.Sprintf(`store:%q action:%q scope:%q rev:%d`, c.Store, c.Action, c.Scope, c.Revision)
}
