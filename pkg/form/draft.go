// Package form models add/edit forms as builders that produce immutable
// snapshots.
package form

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Values is an immutable snapshot of form fields.
type Values struct {
	m map[string]string
}

// Get returns the trimmed value of field.
func (v Values) Get(field string) string {
	return strings.TrimSpace(v.m[field])
}

// Has reports whether field was set to a non-blank value.
func (v Values) Has(field string) bool {
	return v.Get(field) != ""
}

// Fields returns the set field names, sorted.
func (v Values) Fields() []string {
	names := make([]string, 0, len(v.m))
	for name := range v.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of fields.
func (v Values) Len() int {
	return len(v.m)
}

// Float parses field as a number; blank fields return ok=false.
func (v Values) Float(field string) (f float64, ok bool, err error) {
	raw := strings.ReplaceAll(v.Get(field), ",", ".")
	if raw == "" {
		return 0, false, nil
	}
	f, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, err
	}
	return f, true, nil
}

// Time parses field with layout in loc; blank fields return ok=false.
func (v Values) Time(field, layout string, loc *time.Location) (t time.Time, ok bool, err error) {
	raw := v.Get(field)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err = time.ParseInLocation(layout, raw, loc)
	if err != nil {
		return time.Time{}, true, err
	}
	return t, true, nil
}

// Map returns a copy of the snapshot as a plain map.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// Draft accumulates field edits before they are committed.
type Draft struct {
	fields  map[string]string
	initial map[string]string
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{fields: map[string]string{}, initial: map[string]string{}}
}

// Seed returns a draft prefilled with initial values, for edit forms.
func Seed(initial map[string]string) *Draft {
	d := NewDraft()
	for k, v := range initial {
		d.fields[k] = v
		d.initial[k] = v
	}
	return d
}

// Set assigns field and returns the draft for chaining.
func (d *Draft) Set(field, value string) *Draft {
	d.fields[field] = value
	return d
}

// Unset removes field.
func (d *Draft) Unset(field string) *Draft {
	delete(d.fields, field)
	return d
}

// Get returns the current value of field.
func (d *Draft) Get(field string) string {
	return d.fields[field]
}

// Dirty reports whether the draft differs from its seed.
func (d *Draft) Dirty() bool {
	if len(d.fields) != len(d.initial) {
		return true
	}
	for k, v := range d.fields {
		if iv, ok := d.initial[k]; !ok || iv != v {
			return true
		}
	}
	return false
}

// Reset discards edits and returns to the seed values.
func (d *Draft) Reset() {
	d.fields = make(map[string]string, len(d.initial))
	for k, v := range d.initial {
		d.fields[k] = v
	}
}

// Snapshot freezes the current fields. Later edits to the draft do not
// affect the returned Values.
func (d *Draft) Snapshot() Values {
	m := make(map[string]string, len(d.fields))
	for k, v := range d.fields {
		m[k] = v
	}
	return Values{m: m}
}

// Build snapshots the draft and hands it to decode.
func Build[T any](d *Draft, decode func(Values) (T, error)) (T, error) {
	return decode(d.Snapshot())
}

// FromMap builds Values directly, for callers that already hold a complete
// field set (HTTP handlers, tool arguments).
func FromMap(m map[string]string) Values {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return Values{m: out}
}
