package site

import (
	"time"

	"tableflip.dev/sitelog/pkg/view"
)

// Facet names.
const (
	FacetUsers         = "users"
	FacetObjects       = "objects"
	FacetOrganizations = "organizations"
	FacetActions       = "actions"
	FacetNames         = "names"
	FacetStatuses      = "statuses"
	FacetPositions     = "positions"
)

// Sort fields beyond view.FieldCreated.
const (
	SortName     = "name"
	SortUser     = "user"
	SortAction   = "action"
	SortStatus   = "status"
	SortPosition = "position"
)

func byUser[T any](dir *Directory, id func(T) string) func(a, b T) int {
	return view.ByText(func(item T) string { return dir.UserName(id(item)) })
}

// EventSchema plugs events into the view engine.
func EventSchema(dir *Directory, loc *time.Location) view.Fields[Event] {
	return view.Fields[Event]{
		Time: func(e Event) time.Time { return e.CreatedAt },
		FacetTable: map[string]func(Event) []string{
			FacetUsers:   func(e Event) []string { return view.One(e.UserID) },
			FacetObjects: func(e Event) []string { return view.One(e.ObjectID) },
			FacetActions: func(e Event) []string { return view.One(e.Action) },
		},
		Comparators: map[string]func(a, b Event) int{
			SortUser:   byUser(dir, func(e Event) string { return e.UserID }),
			SortAction: view.ByText(func(e Event) string { return ActionLabel(e.Action) }),
		},
		Terms: func(e Event) []string {
			return view.Terms(
				ActionLabel(e.Action),
				e.ObjectName,
				dir.ObjectName(e.ObjectID),
				dir.UserName(e.UserID),
				view.ShortDate(e.CreatedAt, loc),
				view.TimeOfDay(e.CreatedAt, loc),
			)
		},
	}
}

// MaterialSchema plugs materials into the view engine.
func MaterialSchema(dir *Directory, loc *time.Location) view.Fields[Material] {
	return view.Fields[Material]{
		Time: func(m Material) time.Time { return m.CreatedAt },
		FacetTable: map[string]func(Material) []string{
			FacetUsers:    func(m Material) []string { return view.One(m.UserID) },
			FacetObjects:  func(m Material) []string { return view.One(m.ObjectID) },
			FacetNames:    func(m Material) []string { return view.One(m.Name) },
			FacetStatuses: func(m Material) []string { return view.One(m.Status) },
		},
		Comparators: map[string]func(a, b Material) int{
			SortName:   view.ByText(func(m Material) string { return m.Name }),
			SortUser:   byUser(dir, func(m Material) string { return m.UserID }),
			SortStatus: view.ByText(func(m Material) string { return StatusLabel(m.Status) }),
		},
		Terms: func(m Material) []string {
			return view.Terms(
				m.Name,
				m.Unit,
				StatusLabel(m.Status),
				dir.ObjectName(m.ObjectID),
				dir.UserName(m.UserID),
				view.ShortDate(m.CreatedAt, loc),
				view.TimeOfDay(m.CreatedAt, loc),
			)
		},
	}
}

// ViolationSchema plugs violations into the view engine.
func ViolationSchema(dir *Directory, loc *time.Location) view.Fields[Violation] {
	return view.Fields[Violation]{
		Time: func(v Violation) time.Time { return v.CreatedAt },
		FacetTable: map[string]func(Violation) []string{
			FacetUsers:         func(v Violation) []string { return view.One(v.UserID) },
			FacetObjects:       func(v Violation) []string { return view.One(v.ObjectID) },
			FacetOrganizations: func(v Violation) []string { return view.One(v.OrganizationID) },
			FacetStatuses:      func(v Violation) []string { return view.One(v.Status) },
		},
		Comparators: map[string]func(a, b Violation) int{
			SortName:   view.ByText(func(v Violation) string { return v.Name }),
			SortUser:   byUser(dir, func(v Violation) string { return v.UserID }),
			SortStatus: view.ByText(func(v Violation) string { return StatusLabel(v.Status) }),
		},
		Terms: func(v Violation) []string {
			var due string
			if v.DueDate != nil {
				due = view.ShortDate(*v.DueDate, loc)
			}
			return view.Terms(
				v.Name,
				StatusLabel(v.Status),
				dir.OrganizationName(v.OrganizationID),
				dir.ObjectName(v.ObjectID),
				dir.UserName(v.UserID),
				view.ShortDate(v.CreatedAt, loc),
				view.TimeOfDay(v.CreatedAt, loc),
				due,
			)
		},
	}
}

// VisitSchema plugs visits into the view engine. A visit without its own
// position falls back to the user's position.
func VisitSchema(dir *Directory, loc *time.Location) view.Fields[Visit] {
	position := func(v Visit) string {
		if v.Position != "" {
			return v.Position
		}
		return dir.UserPosition(v.UserID)
	}
	return view.Fields[Visit]{
		Time: func(v Visit) time.Time { return v.CreatedAt },
		FacetTable: map[string]func(Visit) []string{
			FacetUsers:     func(v Visit) []string { return view.One(v.UserID) },
			FacetObjects:   func(v Visit) []string { return view.One(v.ObjectID) },
			FacetPositions: func(v Visit) []string { return view.One(position(v)) },
		},
		Comparators: map[string]func(a, b Visit) int{
			SortUser:     byUser(dir, func(v Visit) string { return v.UserID }),
			SortPosition: view.ByText(position),
		},
		Terms: func(v Visit) []string {
			return view.Terms(
				dir.UserName(v.UserID),
				position(v),
				v.Comment,
				dir.ObjectName(v.ObjectID),
				view.ShortDate(v.CreatedAt, loc),
				view.TimeOfDay(v.CreatedAt, loc),
			)
		},
	}
}

// SortLabel renders the sort state the way the page header shows it.
func SortLabel(s view.Sort) string {
	if s.Field == view.FieldCreated {
		if s.Direction == view.Desc {
			return "сначала новые"
		}
		return "сначала старые"
	}
	if s.Direction == view.Desc {
		return "по алфавиту Я-А"
	}
	return "по алфавиту А-Я"
}

// FacetsOf names the facets a page filters by, for help text and
// completion.
func FacetsOf(f Feature) []string {
	switch f {
	case Events:
		return EventSchema(nil, time.UTC).Facets()
	case Materials:
		return MaterialSchema(nil, time.UTC).Facets()
	case Violations:
		return ViolationSchema(nil, time.UTC).Facets()
	case Visits:
		return VisitSchema(nil, time.UTC).Facets()
	}
	return nil
}
