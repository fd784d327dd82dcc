package app

import (
	"fmt"
	"sort"
	"strings"

	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/view"
)

// Query is a complete set of view parameters as they arrive from flags, URL
// parameters or tool arguments.
type Query struct {
	Facets map[string][]string `json:"facets,omitempty"`
	Date   string              `json:"date,omitempty"`
	Search string              `json:"search,omitempty"`
	Sort   string              `json:"sort,omitempty"`
}

// Empty reports whether q changes nothing.
func (q Query) Empty() bool {
	for _, values := range q.Facets {
		if len(values) > 0 {
			return false
		}
	}
	return strings.TrimSpace(q.Date) == "" && strings.TrimSpace(q.Search) == "" && strings.TrimSpace(q.Sort) == ""
}

// SplitValues turns repeated and comma-separated flag values into one list.
func SplitValues(raw ...string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryError reports a parameter the page does not understand.
type QueryError struct {
	Param string
	Value string
	Valid []string
}

func (e *QueryError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("app: invalid %s %q", e.Param, e.Value)
	}
	return fmt.Sprintf("app: invalid %s %q (valid: %s)", e.Param, e.Value, strings.Join(e.Valid, ", "))
}

// apply validates q against the view schema and installs it in one step.
func apply[T collection.Item](v *view.View[T], q Query) error {
	schema := v.Schema()
	facets := schema.Facets()
	names := make([]string, 0, len(q.Facets))
	for name := range q.Facets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !contains(facets, name) {
			return &QueryError{Param: "facet", Value: name, Valid: facets}
		}
	}

	var day *view.Day
	if strings.TrimSpace(q.Date) != "" {
		d, err := view.ParseDay(q.Date)
		if err != nil {
			return &QueryError{Param: "date", Value: q.Date}
		}
		day = &d
	}

	s, err := view.ParseSort(q.Sort)
	if err != nil {
		return &QueryError{Param: "sort", Value: q.Sort}
	}
	if fields := schema.SortFields(); !contains(fields, s.Field) {
		return &QueryError{Param: "sort", Value: s.Field, Valid: fields}
	}

	v.Update(func(f *view.Filters) {
		f.Reset()
		for _, name := range names {
			f.Set(name, q.Facets[name]...)
		}
		f.Date = day
		f.Search = q.Search
	})
	v.SetSort(s)
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
