package site

import (
	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
)

// Directory holds the lookup collections used to turn ids into names.
//
// Pages declare the directory as a view dependency, so a newly loaded user
// list makes search by user name work without touching the page filters.
type Directory struct {
	Users         *collection.Store[User]
	Objects       *collection.Store[Object]
	Organizations *collection.Store[Organization]
}

// NewDirectory builds the lookup stores over the given fetchers. Nil fetchers
// produce stores that can only be filled with Replace.
func NewDirectory(users collection.Fetcher[User], objects collection.Fetcher[Object], orgs collection.Fetcher[Organization], log zerolog.Logger) *Directory {
	return &Directory{
		Users:         collection.New[User](users, collection.WithName(string(Users)), collection.WithLogger(log)),
		Objects:       collection.New[Object](objects, collection.WithName(string(Objects)), collection.WithLogger(log)),
		Organizations: collection.New[Organization](orgs, collection.WithName(string(Organizations)), collection.WithLogger(log)),
	}
}

// Revision changes whenever any lookup store changes.
func (d *Directory) Revision() uint64 {
	if d == nil {
		return 0
	}
	return d.Users.Revision() + d.Objects.Revision() + d.Organizations.Revision()
}

// UserName resolves a user id to "LastName FirstName", or "" when unknown.
func (d *Directory) UserName(id string) string {
	if d == nil || id == "" {
		return ""
	}
	u, ok := d.Users.Get(id)
	if !ok {
		return ""
	}
	return u.FullName()
}

// UserPosition resolves a user's job title.
func (d *Directory) UserPosition(id string) string {
	if d == nil || id == "" {
		return ""
	}
	u, _ := d.Users.Get(id)
	return u.Position
}

// ObjectName resolves an object id.
func (d *Directory) ObjectName(id string) string {
	if d == nil || id == "" {
		return ""
	}
	o, _ := d.Objects.Get(id)
	return o.Name
}

// OrganizationName resolves an organization id.
func (d *Directory) OrganizationName(id string) string {
	if d == nil || id == "" {
		return ""
	}
	o, _ := d.Organizations.Get(id)
	return o.Name
}

// Options lists the choices offered by a facet, as id/label pairs. Facets
// over free-form values (names, statuses) are built from the page items by
// the caller.
func (d *Directory) Options(facet string) []Option {
	if d == nil {
		return nil
	}
	var out []Option
	switch facet {
	case FacetUsers:
		for _, u := range d.Users.Items() {
			out = append(out, Option{Value: u.ID, Label: u.FullName()})
		}
	case FacetObjects:
		for _, o := range d.Objects.Items() {
			out = append(out, Option{Value: o.ID, Label: o.Name})
		}
	case FacetOrganizations:
		for _, o := range d.Organizations.Items() {
			out = append(out, Option{Value: o.ID, Label: o.Name})
		}
	case FacetActions:
		for _, code := range ActionCodes {
			out = append(out, Option{Value: code, Label: ActionLabel(code)})
		}
	}
	return out
}

// Option is one selectable facet value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
