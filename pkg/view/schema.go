package view

import (
	"sort"
	"strings"
	"time"
)

// Schema plugs a record type into the view engine.
type Schema[T any] interface {
	// Timestamp is the designated time used for date filtering and the
	// "created" sort field.
	Timestamp(item T) time.Time
	// FacetValues returns the values item carries for facet. ok is false
	// when the schema does not know the facet.
	FacetValues(item T, facet string) (values []string, ok bool)
	// Compare orders a and b by field. ok is false for unknown fields.
	Compare(a, b T, field string) (cmp int, ok bool)
	// SearchTerms lists every string free-text search should consider.
	SearchTerms(item T) []string
	// Facets lists the facet names the schema understands.
	Facets() []string
	// SortFields lists the sortable field names.
	SortFields() []string
}

// Fields is a table-driven Schema.
type Fields[T any] struct {
	Time        func(T) time.Time
	FacetTable  map[string]func(T) []string
	Comparators map[string]func(a, b T) int
	Terms       func(T) []string
}

var _ Schema[struct{}] = Fields[struct{}]{}

// Timestamp implements Schema.
func (f Fields[T]) Timestamp(item T) time.Time {
	if f.Time == nil {
		return time.Time{}
	}
	return f.Time(item)
}

// FacetValues implements Schema.
func (f Fields[T]) FacetValues(item T, facet string) ([]string, bool) {
	fn, ok := f.FacetTable[facet]
	if !ok || fn == nil {
		return nil, false
	}
	return fn(item), true
}

// Compare implements Schema. The created field falls back to Timestamp when
// no comparator is registered for it.
func (f Fields[T]) Compare(a, b T, field string) (int, bool) {
	if fn, ok := f.Comparators[field]; ok && fn != nil {
		return fn(a, b), true
	}
	if field == FieldCreated && f.Time != nil {
		return CompareTime(f.Time(a), f.Time(b)), true
	}
	return 0, false
}

// SearchTerms implements Schema.
func (f Fields[T]) SearchTerms(item T) []string {
	if f.Terms == nil {
		return nil
	}
	return f.Terms(item)
}

// Facets implements Schema.
func (f Fields[T]) Facets() []string {
	names := make([]string, 0, len(f.FacetTable))
	for name := range f.FacetTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortFields implements Schema.
func (f Fields[T]) SortFields() []string {
	names := make([]string, 0, len(f.Comparators)+1)
	seen := map[string]bool{}
	if f.Time != nil {
		names = append(names, FieldCreated)
		seen[FieldCreated] = true
	}
	extra := make([]string, 0, len(f.Comparators))
	for name := range f.Comparators {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// One wraps a single facet value, skipping empty strings.
func One(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// CompareTime orders zero times last in ascending order.
func CompareTime(a, b time.Time) int {
	switch {
	case a.Equal(b):
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case a.Before(b):
		return -1
	default:
		return 1
	}
}

// CompareText orders strings case-insensitively, empty strings last.
func CompareText(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return strings.Compare(a, b)
	}
	return strings.Compare(la, lb)
}

// CompareFloat orders two numbers.
func CompareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ByText builds a comparator over a string accessor.
func ByText[T any](get func(T) string) func(a, b T) int {
	return func(a, b T) int { return CompareText(get(a), get(b)) }
}

// ByTime builds a comparator over a time accessor.
func ByTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return CompareTime(get(a), get(b)) }
}

// ByFloat builds a comparator over a numeric accessor.
func ByFloat[T any](get func(T) float64) func(a, b T) int {
	return func(a, b T) int { return CompareFloat(get(a), get(b)) }
}
