package view

import (
	"testing"
	"time"

	"tableflip.dev/sitelog/pkg/collection"
)

type visit struct {
	ID       string
	Name     string
	UserID   string
	ObjectID string
	Created  time.Time
}

func (v visit) Key() string { return v.ID }

var userNames = map[string]string{
	"u1": "Иванов",
	"u2": "Петров",
}

func visitSchema() Fields[visit] {
	return Fields[visit]{
		Time: func(v visit) time.Time { return v.Created },
		FacetTable: map[string]func(visit) []string{
			"users":   func(v visit) []string { return One(v.UserID) },
			"objects": func(v visit) []string { return One(v.ObjectID) },
		},
		Comparators: map[string]func(a, b visit) int{
			"name": ByText(func(v visit) string { return v.Name }),
		},
		Terms: func(v visit) []string {
			return Terms(v.Name, ShortDate(v.Created, time.UTC), TimeOfDay(v.Created, time.UTC), userNames[v.UserID])
		},
	}
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func newVisitView(t *testing.T, items ...visit) (*collection.Store[visit], *View[visit]) {
	t.Helper()
	s := collection.New[visit](nil)
	s.Replace("p1", items)
	v := New[visit](s, visitSchema(), WithLocation(time.UTC))
	t.Cleanup(v.Close)
	return s, v
}

func keys(items []visit) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func equalKeys(t *testing.T, got []visit, want ...string) {
	t.Helper()
	k := keys(got)
	if len(k) != len(want) {
		t.Fatalf("expected %v, got %v", want, k)
	}
	for i := range want {
		if k[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, k)
		}
	}
}

func fiveVisits() []visit {
	return []visit{
		{ID: "1", Name: "Бетон", UserID: "u1", ObjectID: "o1", Created: at(1, 9)},
		{ID: "2", Name: "Арматура", UserID: "u1", ObjectID: "o2", Created: at(2, 9)},
		{ID: "3", Name: "Кирпич", UserID: "u2", ObjectID: "o1", Created: at(3, 9)},
		{ID: "4", Name: "Песок", UserID: "u2", ObjectID: "o2", Created: at(4, 9)},
		{ID: "5", Name: "Щебень", UserID: "u1", ObjectID: "o1", Created: at(5, 9)},
	}
}

func TestFacetsAreConjunctive(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.SetSort(Sort{Field: FieldCreated, Direction: Asc})

	v.SetFacet("users", "u1")
	v.SetFacet("objects", "o1")
	equalKeys(t, v.Items(), "1", "5")

	v.SetFacet("objects", "o1", "o2")
	equalKeys(t, v.Items(), "1", "2", "5")
}

func TestSearchCombinesWithFacets(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.SetSort(Sort{Field: FieldCreated, Direction: Asc})
	v.SetFacet("objects", "o1")
	v.SetSearch("петров")
	equalKeys(t, v.Items(), "3")

	v.SetSearch("  ЩЕБ ")
	equalKeys(t, v.Items(), "5")

	v.SetSearch("03.03.2024")
	equalKeys(t, v.Items(), "3")

	v.SetSearch("09:00")
	equalKeys(t, v.Items(), "1", "3", "5")
}

func TestDateFilterMatchesCalendarDay(t *testing.T) {
	late := visit{ID: "late", Created: time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)}
	early := visit{ID: "early", Created: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
	next := visit{ID: "next", Created: time.Date(2024, time.March, 2, 0, 1, 0, 0, time.UTC)}
	_, v := newVisitView(t, late, early, next)

	day, err := ParseDay("2024-03-01")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	v.SetDate(&day)
	v.SetSort(Sort{})
	equalKeys(t, v.Items(), "late", "early")
}

func TestDateFilterUsesViewLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	s := collection.New[visit](nil)
	s.Replace("", []visit{{ID: "a", Created: time.Date(2024, time.March, 1, 22, 0, 0, 0, time.UTC)}})
	v := New[visit](s, visitSchema(), WithLocation(moscow))
	defer v.Close()

	v.SetDate(&Day{Year: 2024, Month: time.March, Day: 2})
	equalKeys(t, v.Items(), "a")
}

func TestHasActiveFilters(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	if v.HasActiveFilters() {
		t.Fatalf("fresh view must not report active filters")
	}

	v.SetFacet("users", "u1")
	if !v.HasActiveFilters() {
		t.Fatalf("facet should activate filters")
	}
	v.ResetFilters()
	if v.HasActiveFilters() {
		t.Fatalf("reset should clear filters")
	}

	v.SetSearch("x")
	if !v.HasActiveFilters() {
		t.Fatalf("search should activate filters")
	}
	v.SetSearch("   ")
	if v.HasActiveFilters() {
		t.Fatalf("blank search is not a filter")
	}

	v.SetDate(&Day{Year: 2024, Month: time.March, Day: 1})
	if !v.HasActiveFilters() {
		t.Fatalf("date should activate filters")
	}
	v.SetDate(nil)
	if v.HasActiveFilters() {
		t.Fatalf("clearing date should deactivate filters")
	}
}

func TestResetIsAtomicAndIdempotent(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.Update(func(f *Filters) {
		f.Set("users", "u1")
		f.Set("objects", "o2")
		f.Search = "арм"
	})
	equalKeys(t, v.Items(), "2")

	before := v.memo.computed
	v.ResetFilters()
	if v.Len() != 5 {
		t.Fatalf("expected all items after reset, got %d", v.Len())
	}
	if v.memo.computed != before+1 {
		t.Fatalf("reset should cause a single recompute, got %d", v.memo.computed-before)
	}
	once := v.Filters()
	v.ResetFilters()
	if !once.Equal(v.Filters()) {
		t.Fatalf("second reset changed the state")
	}
	_ = v.Items()
	if v.memo.computed != before+1 {
		t.Fatalf("no-op reset must not invalidate the memo")
	}
}

func TestSortIsStableAcrossDirections(t *testing.T) {
	items := []visit{
		{ID: "a1", Name: "A"},
		{ID: "b1", Name: "B"},
		{ID: "a2", Name: "A"},
		{ID: "b2", Name: "B"},
		{ID: "c1", Name: "C"},
	}
	_, v := newVisitView(t, items...)

	v.SetSort(Sort{Field: "name", Direction: Asc})
	equalKeys(t, v.Items(), "a1", "a2", "b1", "b2", "c1")

	v.SetSortDirection(Desc)
	equalKeys(t, v.Items(), "c1", "b1", "b2", "a1", "a2")
}

func TestUnknownSortFieldKeepsCollectionOrder(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.SetSort(Sort{Field: "nope", Direction: Desc})
	equalKeys(t, v.Items(), "1", "2", "3", "4", "5")
}

func TestDefaultSortIsNewestFirst(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	equalKeys(t, v.Items(), "5", "4", "3", "2", "1")
}

func TestToggleSortFlipsSameFieldAndKeepsDirection(t *testing.T) {
	s := Sort{Field: FieldCreated, Direction: Desc}
	s = s.Toggle(FieldCreated)
	if s.Direction != Asc {
		t.Fatalf("expected asc after toggling same field, got %s", s)
	}
	s = s.Toggle("name")
	if s.Field != "name" || s.Direction != Asc {
		t.Fatalf("expected name asc, got %s", s)
	}
}

func TestSelectionClearedOnRemove(t *testing.T) {
	s, v := newVisitView(t, fiveVisits()...)
	v.Select("3")
	if v.EditDraft() == nil {
		t.Fatalf("select should start an edit draft")
	}
	s.Remove("3")
	if v.CurrentID() != "" {
		t.Fatalf("selection must be cleared after removal, got %q", v.CurrentID())
	}
	if v.EditDraft() != nil {
		t.Fatalf("edit draft must be dropped with the selection")
	}
}

func TestSelectionClearedWhenRefetchDropsIt(t *testing.T) {
	s, v := newVisitView(t, fiveVisits()...)
	v.Select("2")
	s.Replace("p1", fiveVisits()[2:])
	if _, ok := v.Current(); ok {
		t.Fatalf("selection should not survive a refetch without the item")
	}
}

func TestSelectionClearedOnScopeChange(t *testing.T) {
	s, v := newVisitView(t, fiveVisits()...)
	v.Select("1")
	s.Replace("p2", fiveVisits())
	if v.CurrentID() != "" {
		t.Fatalf("scope change should clear selection")
	}
}

func TestSelectionSurvivesFiltering(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.Select("2")
	v.SetFacet("users", "u2")
	if v.IndexOf("2") != -1 {
		t.Fatalf("filter should hide item 2")
	}
	got, ok := v.Current()
	if !ok || got.ID != "2" {
		t.Fatalf("selection should survive filtering, got %+v %v", got, ok)
	}
}

func TestSelectionBeforeFirstFetchIsKept(t *testing.T) {
	s := collection.New[visit](nil)
	v := New[visit](s, visitSchema())
	defer v.Close()

	v.Select("2")
	if v.CurrentID() != "2" {
		t.Fatalf("selection made before loading should be kept")
	}
	s.Replace("p1", fiveVisits())
	if v.CurrentID() != "2" {
		t.Fatalf("selection should survive the initial load when the id exists")
	}
}

func TestDanglingFacetValueMatchesNothing(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.SetFacet("users", "nonexistent-id")
	if got := v.Items(); len(got) != 0 {
		t.Fatalf("expected empty view, got %v", keys(got))
	}
	if got := v.Filters().Values("users"); len(got) != 1 || got[0] != "nonexistent-id" {
		t.Fatalf("dangling value must stay selected, got %v", got)
	}
}

func TestUnknownFacetMatchesNothing(t *testing.T) {
	_, v := newVisitView(t, fiveVisits()...)
	v.SetFacet("colour", "red")
	if v.Len() != 0 {
		t.Fatalf("unknown facet should yield an empty view")
	}
}

func TestItemsAreMemoized(t *testing.T) {
	s, v := newVisitView(t, fiveVisits()...)
	first := v.Items()
	second := v.Items()
	if &first[0] != &second[0] {
		t.Fatalf("reads without changes should share the memoized slice")
	}
	if v.memo.computed != 1 {
		t.Fatalf("expected one computation, got %d", v.memo.computed)
	}

	v.SetFacet("users", "u1", "u2")
	third := v.Items()
	equalKeys(t, third, keys(first)...)
	if v.memo.computed != 2 {
		t.Fatalf("facet change should recompute once, got %d", v.memo.computed)
	}

	_ = s.Upsert(visit{ID: "6", UserID: "u1", Created: at(6, 9)})
	if got := v.Items(); len(got) != 6 || got[0].ID != "6" {
		t.Fatalf("store change should be reflected, got %v", keys(got))
	}
}

type counter struct{ rev uint64 }

func (c *counter) Revision() uint64 { return c.rev }

func TestDependencyRevisionInvalidatesMemo(t *testing.T) {
	s := collection.New[visit](nil)
	s.Replace("", fiveVisits())
	dep := &counter{}
	v := New[visit](s, visitSchema(), DependsOn(dep))
	defer v.Close()

	_ = v.Items()
	_ = v.Items()
	if v.memo.computed != 1 {
		t.Fatalf("expected memo hit")
	}
	dep.rev++
	_ = v.Items()
	if v.memo.computed != 2 {
		t.Fatalf("dependency change should recompute")
	}
}

func TestDeleteOverlayClearsPendingItem(t *testing.T) {
	s, v := newVisitView(t, fiveVisits()...)
	item, _ := s.Get("4")
	v.ConfirmDelete(item)
	if o := v.Overlays(); !o.ShowDelete || o.DeletingID != "4" {
		t.Fatalf("unexpected overlays %+v", o)
	}
	v.CloseDelete()
	if _, ok := v.Deleting(); ok {
		t.Fatalf("closing the overlay must drop the pending item")
	}

	v.ConfirmDelete(item)
	s.Remove("4")
	if o := v.Overlays(); o.ShowDelete || o.DeletingID != "" {
		t.Fatalf("removing the pending item should close the overlay, got %+v", o)
	}
}

func TestAddOverlayDraftLifecycle(t *testing.T) {
	_, v := newVisitView(t)
	d := v.OpenAdd()
	d.Set("name", "Бетон")
	if !v.Overlays().ShowAdd || v.AddDraft().Get("name") != "Бетон" {
		t.Fatalf("add overlay should hold its draft")
	}
	v.CloseAdd()
	if v.Overlays().ShowAdd || v.AddDraft() != nil {
		t.Fatalf("closing add overlay should drop the draft")
	}
}
