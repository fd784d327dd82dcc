package site

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/form"
	"tableflip.dev/sitelog/pkg/view"
)

func testDirectory() *Directory {
	d := NewDirectory(nil, nil, nil, zerolog.Nop())
	d.Users.Replace("p1", []User{
		{ID: "u1", FirstName: "Иван", LastName: "Иванов", Position: "Прораб"},
		{ID: "u2", FirstName: "Пётр", LastName: "Петров", Position: "Инженер"},
	})
	d.Objects.Replace("p1", []Object{{ID: "o1", Name: "ЖК Северный"}})
	d.Organizations.Replace("p1", []Organization{{ID: "org1", Name: "СтройМонтаж"}})
	return d
}

func TestEventSearchResolvesNames(t *testing.T) {
	dir := testDirectory()
	s := collection.New[Event](nil)
	s.Replace("p1", []Event{
		{ID: "e1", Action: ActionUpload, UserID: "u1", ObjectID: "o1", CreatedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{ID: "e2", Action: ActionSign, UserID: "u2", ObjectID: "o1", CreatedAt: time.Date(2024, 3, 2, 11, 0, 0, 0, time.UTC)},
		{ID: "e3", Action: ActionCreate, UserID: "missing", CreatedAt: time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)},
	})
	v := view.New[Event](s, EventSchema(dir, time.UTC), view.DependsOn(dir), view.WithLocation(time.UTC))
	defer v.Close()

	cases := map[string][]string{
		"загрузка":   {"e1"},
		"петров":     {"e2"},
		"северный":   {"e2", "e1"},
		"02.03.2024": {"e2"},
		"12:00":      {"e3"},
		"missing":    {},
	}
	for query, want := range cases {
		v.SetSearch(query)
		got := v.Items()
		if len(got) != len(want) {
			t.Fatalf("%q: expected %v, got %d items", query, want, len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("%q: expected %v at %d, got %s", query, want, i, got[i].ID)
			}
		}
	}
}

func TestDirectoryChangeInvalidatesSearch(t *testing.T) {
	dir := NewDirectory(nil, nil, nil, zerolog.Nop())
	s := collection.New[Visit](nil)
	s.Replace("p1", []Visit{{ID: "v1", UserID: "u1"}})
	v := view.New[Visit](s, VisitSchema(dir, time.UTC), view.DependsOn(dir))
	defer v.Close()

	v.SetSearch("иванов")
	if v.Len() != 0 {
		t.Fatalf("unresolved user must not match")
	}
	dir.Users.Replace("p1", []User{{ID: "u1", FirstName: "Иван", LastName: "Иванов"}})
	if v.Len() != 1 {
		t.Fatalf("loading users should make the visit searchable")
	}
}

func TestVisitPositionFallsBackToUser(t *testing.T) {
	dir := testDirectory()
	s := collection.New[Visit](nil)
	s.Replace("p1", []Visit{
		{ID: "v1", UserID: "u1"},
		{ID: "v2", UserID: "u2", Position: "Прораб"},
		{ID: "v3", UserID: "u2"},
	})
	v := view.New[Visit](s, VisitSchema(dir, time.UTC))
	defer v.Close()

	v.SetFacet(FacetPositions, "Прораб")
	if v.Len() != 2 {
		t.Fatalf("expected two foremen, got %d", v.Len())
	}
}

func TestMaterialSortByName(t *testing.T) {
	s := collection.New[Material](nil)
	s.Replace("p1", []Material{{ID: "m1", Name: "Щебень"}, {ID: "m2", Name: "арматура"}, {ID: "m3", Name: "Бетон"}})
	v := view.New[Material](s, MaterialSchema(testDirectory(), time.UTC), view.WithSort(view.Sort{Field: SortName, Direction: view.Asc}))
	defer v.Close()

	got := v.Items()
	if got[0].ID != "m2" || got[1].ID != "m3" || got[2].ID != "m1" {
		t.Fatalf("unexpected order %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSortLabel(t *testing.T) {
	cases := map[view.Sort]string{
		{Field: view.FieldCreated, Direction: view.Desc}: "сначала новые",
		{Field: view.FieldCreated, Direction: view.Asc}:  "сначала старые",
		{Field: SortName, Direction: view.Asc}:           "по алфавиту А-Я",
		{Field: SortName, Direction: view.Desc}:          "по алфавиту Я-А",
	}
	for s, want := range cases {
		if got := SortLabel(s); got != want {
			t.Fatalf("%s: expected %q, got %q", s, want, got)
		}
	}
}

func TestActionLabelFallsBackToCode(t *testing.T) {
	if ActionLabel(ActionSign) != "Подписание" {
		t.Fatalf("unexpected label %q", ActionLabel(ActionSign))
	}
	if ActionLabel("archive") != "archive" {
		t.Fatalf("unknown action should render raw")
	}
}

func TestMaterialFromValuesValidates(t *testing.T) {
	_, err := MaterialFromValues(form.FromMap(map[string]string{FieldQuantity: "много"}), nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError")
	}
	for _, field := range []string{FieldName, FieldObjectID, FieldQuantity} {
		if _, ok := verr.Field(field); !ok {
			t.Fatalf("expected error for %s, got %v", field, verr.Errors)
		}
	}
}

func TestMaterialFromValuesDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m, err := MaterialFromValues(form.FromMap(map[string]string{
		FieldName: "Бетон", FieldObjectID: "o1", FieldQuantity: "2,5", FieldUnit: "м3",
	}), func() time.Time { return now })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == "" || !m.CreatedAt.Equal(now) || m.Status != StatusNew || m.Quantity != 2.5 {
		t.Fatalf("unexpected material %+v", m)
	}
}

func TestViolationDueDate(t *testing.T) {
	v, err := ViolationFromValues(form.FromMap(map[string]string{
		FieldID: "x1", FieldName: "Нет ограждения", FieldObjectID: "o1", FieldDueDate: "2024-04-01",
	}), nil, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID != "x1" || v.DueDate == nil || v.DueDate.Day() != 1 || v.Status != StatusOpen {
		t.Fatalf("unexpected violation %+v", v)
	}
	_, err = ViolationFromValues(form.FromMap(map[string]string{
		FieldName: "x", FieldObjectID: "o1", FieldDueDate: "01.04.2024",
	}), nil, time.UTC)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad due date, got %v", err)
	}
}

func TestEventFromValuesRejectsUnknownAction(t *testing.T) {
	_, err := EventFromValues(form.FromMap(map[string]string{FieldAction: "archive", FieldObjectID: "o1"}), nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRoleCapabilities(t *testing.T) {
	if RoleViewer.Can(CanAdd, Visits) {
		t.Fatalf("viewer must be read-only")
	}
	if !RoleInspector.Can(CanAdd, Violations) || RoleInspector.Can(CanDelete, Violations) || RoleInspector.Can(CanEdit, Materials) {
		t.Fatalf("unexpected inspector capabilities")
	}
	if err := RoleViewer.Require(CanDelete, Events); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if r, err := ParseRole(" Manager "); err != nil || r != RoleManager {
		t.Fatalf("unexpected role %q %v", r, err)
	}
}

func TestParseFeature(t *testing.T) {
	for raw, want := range map[string]Feature{"events": Events, "Visit": Visits, "user": Users} {
		got, err := ParseFeature(raw)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s %v", raw, want, got, err)
		}
	}
	if _, err := ParseFeature("invoices"); !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected unknown feature error, got %v", err)
	}
}

func TestTablesResolveNames(t *testing.T) {
	dir := testDirectory()
	row := VisitTable(dir, time.UTC).Row(Visit{ID: "v1", UserID: "u1", ObjectID: "o1"})
	if row[2] != "Иванов Иван" || row[3] != "Прораб" || row[4] != "ЖК Северный" {
		t.Fatalf("unexpected row %v", row)
	}
	row = VisitTable(dir, time.UTC).Row(Visit{ID: "v2", UserID: "gone"})
	if row[2] != "gone" {
		t.Fatalf("unknown user should render its id, got %q", row[2])
	}
}

func TestFormFieldsCoverPages(t *testing.T) {
	for _, f := range Pages {
		if len(FormFields(f)) == 0 {
			t.Fatalf("%s has no form fields", f)
		}
	}
	if FormFields(Users) != nil {
		t.Fatalf("lookups are not editable")
	}
}

func TestFacetsOf(t *testing.T) {
	got := FacetsOf(Materials)
	want := map[string]bool{FacetStatuses: true, FacetNames: true}
	n := 0
	for _, f := range got {
		if want[f] {
			n++
		}
	}
	if n != len(want) {
		t.Fatalf("expected statuses and names among %v", got)
	}
	if FacetsOf(Objects) != nil {
		t.Fatalf("lookups have no facets")
	}
}
