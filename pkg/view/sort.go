package view

import (
	"fmt"
	"strings"
)

// Direction orders a sort field.
type Direction string

const (
	// Asc sorts smallest first.
	Asc Direction = "asc"
	// Desc sorts largest first.
	Desc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case. An empty string means Asc.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("view: unknown sort direction %q", raw)
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort selects one field and a direction.
type Sort struct {
	Field     string
	Direction Direction
}

// DefaultSort is the newest-first ordering by creation time.
var DefaultSort = Sort{Field: FieldCreated, Direction: Desc}

// FieldCreated is the sort field every schema maps to the item timestamp.
const FieldCreated = "created"

// Toggle returns the sort after the user picks field: picking the active
// field flips its direction, picking another field keeps the direction.
func (s Sort) Toggle(field string) Sort {
	if s.Field == field {
		return Sort{Field: field, Direction: s.Direction.Flip()}
	}
	dir := s.Direction
	if dir == "" {
		dir = Asc
	}
	return Sort{Field: field, Direction: dir}
}

func (s Sort) String() string {
	dir := s.Direction
	if dir == "" {
		dir = Asc
	}
	return fmt.Sprintf("%s %s", s.Field, dir)
}

// ParseSort reads "field" or "field:dir" (also "-field" for descending).
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}
	if strings.HasPrefix(raw, "-") {
		return Sort{Field: strings.TrimPrefix(raw, "-"), Direction: Desc}, nil
	}
	field, dir, _ := strings.Cut(raw, ":")
	d, err := ParseDirection(dir)
	if err != nil {
		return Sort{}, err
	}
	return Sort{Field: strings.TrimSpace(field), Direction: d}, nil
}
