package site

import (
	"fmt"
	"strings"
)

// Feature names one list page and the REST resource behind it.
type Feature string

const (
	Events     Feature = "events"
	Materials  Feature = "materials"
	Violations Feature = "violations"
	Visits     Feature = "visits"

	Users         Feature = "users"
	Objects       Feature = "objects"
	Organizations Feature = "organizations"
)

// Pages are the features with a list page of their own.
var Pages = []Feature{Events, Materials, Violations, Visits}

// Lookups are the features used to resolve names.
var Lookups = []Feature{Users, Objects, Organizations}

// ParseFeature accepts a feature name in any case, with or without the
// trailing "s".
func ParseFeature(raw string) (Feature, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, f := range append(append([]Feature{}, Pages...), Lookups...) {
		if name == string(f) || name+"s" == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, raw)
}

// IsPage reports whether f has a list page.
func (f Feature) IsPage() bool {
	for _, p := range Pages {
		if p == f {
			return true
		}
	}
	return false
}

// Title is the page heading.
func (f Feature) Title() string {
	switch f {
	case Events:
		return "Журнал событий"
	case Materials:
		return "Материалы"
	case Violations:
		return "Нарушения"
	case Visits:
		return "Посещения"
	case Users:
		return "Пользователи"
	case Objects:
		return "Объекты"
	case Organizations:
		return "Организации"
	}
	return string(f)
}
