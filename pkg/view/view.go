// Package view derives filtered, sorted projections of a collection.Store.
//
// A View owns the filter, sort and selection state of one list page. Items
// recomputes the derived list only when the store, the view parameters or a
// declared dependency changed since the previous read; otherwise it returns
// the memoized slice.
package view

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
)

// Revisioner is implemented by anything whose changes should invalidate the
// derived list, such as lookup stores used to resolve names during search.
type Revisioner interface {
	Revision() uint64
}

// View is the derived-view engine for one page.
type View[T collection.Item] struct {
	store  *collection.Store[T]
	schema Schema[T]
	deps   []Revisioner
	loc    *time.Location
	log    zerolog.Logger

	mu      sync.Mutex
	filters Filters
	sort    Sort
	rev     uint64
	sel     selection[T]
	memo    memo[T]

	warned map[string]bool
	unsub  func()
}

type memo[T any] struct {
	valid    bool
	storeRev uint64
	viewRev  uint64
	deps     []uint64
	items    []T
	computed int
}

// Option customises a View.
type Option func(*viewOptions)

type viewOptions struct {
	deps []Revisioner
	loc  *time.Location
	log  zerolog.Logger
	sort *Sort
}

// DependsOn declares extra inputs whose revision invalidates the memo.
func DependsOn(deps ...Revisioner) Option {
	return func(o *viewOptions) {
		for _, d := range deps {
			if d != nil {
				o.deps = append(o.deps, d)
			}
		}
	}
}

// WithLocation sets the time zone used for calendar-day matching.
func WithLocation(loc *time.Location) Option {
	return func(o *viewOptions) {
		o.loc = loc
	}
}

// WithLogger sets the view logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *viewOptions) {
		o.log = log
	}
}

// WithSort overrides the initial sort.
func WithSort(s Sort) Option {
	return func(o *viewOptions) {
		o.sort = &s
	}
}

// New builds a view over store. The view subscribes to the store to keep the
// selection consistent; call Close when the page goes away.
func New[T collection.Item](store *collection.Store[T], schema Schema[T], opts ...Option) *View[T] {
	o := &viewOptions{loc: time.Local, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	initial := DefaultSort
	if o.sort != nil {
		initial = *o.sort
	}
	v := &View[T]{
		store:  store,
		schema: schema,
		deps:   o.deps,
		loc:    o.loc,
		log:    o.log,
		sort:   initial,
		warned: map[string]bool{},
	}
	v.unsub = store.Subscribe(v.onChange)
	return v
}

// Close detaches the view from its store.
func (v *View[T]) Close() {
	if v.unsub != nil {
		v.unsub()
	}
}

// Store returns the backing store.
func (v *View[T]) Store() *collection.Store[T] {
	return v.store
}

// Schema returns the schema the view was built with.
func (v *View[T]) Schema() Schema[T] {
	return v.schema
}

// Location returns the time zone used for day matching.
func (v *View[T]) Location() *time.Location {
	return v.loc
}

// Items returns the filtered, sorted list. The returned slice is shared
// between reads until an input changes and must not be modified.
func (v *View[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reconcileSelectionLocked()
	return v.itemsLocked()
}

// Len returns the size of the derived list.
func (v *View[T]) Len() int {
	return len(v.Items())
}

// At returns the derived item at index i.
func (v *View[T]) At(i int) (T, bool) {
	items := v.Items()
	if i < 0 || i >= len(items) {
		var zero T
		return zero, false
	}
	return items[i], true
}

// IndexOf returns the position of id in the derived list or -1.
func (v *View[T]) IndexOf(id string) int {
	for i, item := range v.Items() {
		if item.Key() == id {
			return i
		}
	}
	return -1
}

func (v *View[T]) itemsLocked() []T {
	items, storeRev := v.store.Snapshot()
	deps := make([]uint64, len(v.deps))
	for i, d := range v.deps {
		deps[i] = d.Revision()
	}
	if v.memo.valid && v.memo.storeRev == storeRev && v.memo.viewRev == v.rev && equalRevs(v.memo.deps, deps) {
		return v.memo.items
	}
	out := v.derive(items, v.filters, v.sort)
	v.memo = memo[T]{
		valid:    true,
		storeRev: storeRev,
		viewRev:  v.rev,
		deps:     deps,
		items:    out,
		computed: v.memo.computed + 1,
	}
	return out
}

// derive applies facets, date, search and sort to a private copy of items.
func (v *View[T]) derive(items []T, f Filters, s Sort) []T {
	out := make([]T, 0, len(items))
	query := NormalizeQuery(f.Search)
	facets := f.ActiveFacets()
	for _, name := range facets {
		if !v.knownFacet(name) {
			v.warnOnce("facet:"+name, "unknown facet, nothing matches")
			return out
		}
	}

	for _, item := range items {
		if !v.matchFacets(item, f, facets) {
			continue
		}
		if f.Date != nil && !f.Date.IsZero() && !f.Date.Contains(v.schema.Timestamp(item), v.loc) {
			continue
		}
		if query != "" && !matchesNormalized(v.schema.SearchTerms(item), query) {
			continue
		}
		out = append(out, item)
	}

	if s.Field == "" || len(out) < 2 {
		return out
	}
	if _, ok := v.schema.Compare(out[0], out[0], s.Field); !ok {
		v.warnOnce("sort:"+s.Field, "unknown sort field, keeping collection order")
		return out
	}
	desc := s.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		c, _ := v.schema.Compare(out[i], out[j], s.Field)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func (v *View[T]) matchFacets(item T, f Filters, facets []string) bool {
	for _, name := range facets {
		selected := f.Facets[name]
		have, _ := v.schema.FacetValues(item, name)
		if !intersects(selected, have) {
			return false
		}
	}
	return true
}

func (v *View[T]) knownFacet(name string) bool {
	for _, known := range v.schema.Facets() {
		if known == name {
			return true
		}
	}
	return false
}

func (v *View[T]) warnOnce(key, msg string) {
	if v.warned[key] {
		return
	}
	v.warned[key] = true
	v.log.Debug().Str("input", key).Msg(msg)
}

func intersects(selected, have []string) bool {
	for _, s := range selected {
		for _, h := range have {
			if s == h {
				return true
			}
		}
	}
	return false
}

func equalRevs(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Filters returns a copy of the current filter state.
func (v *View[T]) Filters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// HasActiveFilters reports whether any facet restricts the list.
func (v *View[T]) HasActiveFilters() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Active()
}

// Update applies several filter edits as one step. Readers never observe the
// intermediate states.
func (v *View[T]) Update(fn func(*Filters)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.filters.Clone()
	fn(&next)
	if next.Equal(v.filters) {
		return
	}
	v.filters = next
	v.rev++
}

// SetFacet replaces the values selected for facet.
func (v *View[T]) SetFacet(facet string, values ...string) {
	v.Update(func(f *Filters) { f.Set(facet, values...) })
}

// ToggleFacet adds or removes a single facet value.
func (v *View[T]) ToggleFacet(facet, value string) {
	v.Update(func(f *Filters) { f.Toggle(facet, value) })
}

// SetDate restricts the list to one calendar day; nil clears it.
func (v *View[T]) SetDate(d *Day) {
	v.Update(func(f *Filters) {
		if d == nil || d.IsZero() {
			f.Date = nil
			return
		}
		day := *d
		f.Date = &day
	})
}

// SetSearch sets the free-text query.
func (v *View[T]) SetSearch(query string) {
	v.Update(func(f *Filters) { f.Search = query })
}

// Search returns the current free-text query.
func (v *View[T]) Search() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Search
}

// ResetFilters clears every facet at once.
func (v *View[T]) ResetFilters() {
	v.Update(func(f *Filters) { f.Reset() })
}

// Sort returns the active sort.
func (v *View[T]) Sort() Sort {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sort
}

// SetSort replaces field and direction.
func (v *View[T]) SetSort(s Sort) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if s.Direction == "" {
		s.Direction = Asc
	}
	if s == v.sort {
		return
	}
	v.sort = s
	v.rev++
}

// SetSortField changes the field and keeps the direction.
func (v *View[T]) SetSortField(field string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort.Field == field {
		return
	}
	v.sort.Field = field
	v.rev++
}

// SetSortDirection changes the direction and keeps the field.
func (v *View[T]) SetSortDirection(d Direction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sort.Direction == d {
		return
	}
	v.sort.Direction = d
	v.rev++
}

// ToggleSort behaves like clicking a column header.
func (v *View[T]) ToggleSort(field string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = v.sort.Toggle(field)
	v.rev++
}
