package view

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date without a time of day.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in loc. A nil loc means time.Local.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(raw))
	if err != nil {
		return Day{}, fmt.Errorf("view: invalid day %q: %w", raw, err)
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Contains reports whether t falls on d in loc, ignoring time of day.
func (d Day) Contains(t time.Time, loc *time.Location) bool {
	if t.IsZero() || d.IsZero() {
		return false
	}
	return DayOf(t, loc) == d
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Filters holds one value per facet. The zero value restricts nothing.
//
// Facets maps a facet name to its ordered set of selected values; an empty
// set means the facet is inactive. Search is matched after trimming spaces.
type Filters struct {
	Date   *Day
	Facets map[string][]string
	Search string
}

// Active reports whether any facet restricts the collection.
func (f Filters) Active() bool {
	if f.Date != nil && !f.Date.IsZero() {
		return true
	}
	for _, values := range f.Facets {
		if len(values) > 0 {
			return true
		}
	}
	return strings.TrimSpace(f.Search) != ""
}

// Values returns the selected values of facet.
func (f Filters) Values(facet string) []string {
	return append([]string(nil), f.Facets[facet]...)
}

// ActiveFacets returns the names of facets with at least one value, sorted.
func (f Filters) ActiveFacets() []string {
	names := make([]string, 0, len(f.Facets))
	for name, values := range f.Facets {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Set replaces the values of facet. Empty values and duplicates are dropped.
func (f *Filters) Set(facet string, values ...string) {
	cleaned := dedupe(values)
	if len(cleaned) == 0 {
		if f.Facets != nil {
			delete(f.Facets, facet)
		}
		return
	}
	if f.Facets == nil {
		f.Facets = make(map[string][]string)
	}
	f.Facets[facet] = cleaned
}

// Toggle adds value to facet, or removes it when already selected.
func (f *Filters) Toggle(facet, value string) {
	current := f.Facets[facet]
	for i, v := range current {
		if v == value {
			next := make([]string, 0, len(current)-1)
			next = append(next, current[:i]...)
			next = append(next, current[i+1:]...)
			f.Set(facet, next...)
			return
		}
	}
	f.Set(facet, append(append([]string(nil), current...), value)...)
}

// Clear empties a single facet.
func (f *Filters) Clear(facet string) {
	f.Set(facet)
}

// Reset restores every facet to its empty default.
func (f *Filters) Reset() {
	*f = Filters{}
}

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	out := Filters{Search: f.Search}
	if f.Date != nil {
		d := *f.Date
		out.Date = &d
	}
	if len(f.Facets) > 0 {
		out.Facets = make(map[string][]string, len(f.Facets))
		for name, values := range f.Facets {
			if len(values) == 0 {
				continue
			}
			out.Facets[name] = append([]string(nil), values...)
		}
	}
	return out
}

// Equal compares two filter values facet by facet.
func (f Filters) Equal(other Filters) bool {
	if strings.TrimSpace(f.Search) != strings.TrimSpace(other.Search) {
		return false
	}
	switch {
	case f.Date == nil && other.Date == nil:
	case f.Date == nil || other.Date == nil:
		return false
	case *f.Date != *other.Date:
		return false
	}
	if len(f.ActiveFacets()) != len(other.ActiveFacets()) {
		return false
	}
	for name, values := range f.Facets {
		theirs := other.Facets[name]
		if len(values) != len(theirs) {
			return false
		}
		for i := range values {
			if values[i] != theirs[i] {
				return false
			}
		}
	}
	return true
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
