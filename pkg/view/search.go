package view

import (
	"strings"
	"time"
)

const (
	shortDateLayout = "02.01.2006"
	timeOfDayLayout = "15:04"
)

// NormalizeQuery trims and lower-cases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether any term contains the query, ignoring case.
// An empty query matches everything.
func Matches(terms []string, query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return matchesNormalized(terms, q)
}

func matchesNormalized(terms []string, q string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(strings.ToLower(term), q) {
			return true
		}
	}
	return false
}

// Terms collects searchable strings, dropping empty ones so unresolved
// references simply do not contribute.
func Terms(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ShortDate formats t as DD.MM.YYYY in loc. Zero times format as "".
func ShortDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(shortDateLayout)
}

// TimeOfDay formats t as HH:MM in loc. Zero times format as "".
func TimeOfDay(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeOfDayLayout)
}
