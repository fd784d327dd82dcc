package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/form"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/view"
)

// Pager is a list page with its item type erased, for renderers that handle
// every feature the same way.
type Pager interface {
	Feature() site.Feature
	Fetch(ctx context.Context, scope string) error
	Status() collection.Status
	Err() error

	Apply(q Query) error
	Headers() []string
	Rows() [][]string
	Records() []any
	Len() int
	Total() int

	Filters() view.Filters
	HasActiveFilters() bool
	SetSearch(query string)
	SetDate(d *view.Day)
	ToggleFacet(facet, value string)
	ResetFilters()
	FacetNames() []string
	FacetOptions(facet string) []site.Option

	Sort() view.Sort
	SortFields() []string
	ToggleSort(field string)

	SelectAt(i int) bool
	SelectID(id string) bool
	CurrentID() string
	Deselect()
	EditDraft() *form.Draft
	SubmitEdit(ctx context.Context) error

	OpenAdd() *form.Draft
	CloseAdd()
	SubmitAdd(ctx context.Context) error

	ConfirmDeleteAt(i int) bool
	ConfirmDeleteID(id string) bool
	CloseDelete()
	SubmitDelete(ctx context.Context) error
	Overlays() view.Overlays

	Close()
}

// Page binds one feature's store and view to its table and form decoder.
type Page[T collection.Item] struct {
	feature site.Feature
	store   *collection.Store[T]
	view    *view.View[T]
	table   site.Table[T]
	decode  func(form.Values) (T, error)
	dir     *site.Directory
	svc     *Service
	log     zerolog.Logger
}

var _ Pager = (*Page[site.Event])(nil)

func newPage[T collection.Item](svc *Service, dir *site.Directory, feature site.Feature, fetcher collection.Fetcher[T], schema view.Schema[T], table site.Table[T], decode func(form.Values) (T, error)) *Page[T] {
	log := svc.Log.With().Str("page", string(feature)).Logger()
	s := collection.New[T](fetcher, collection.WithName(string(feature)), collection.WithLogger(log))
	return &Page[T]{
		feature: feature,
		store:   s,
		view:    view.New[T](s, schema, view.DependsOn(dir), view.WithLocation(svc.location()), view.WithLogger(log)),
		table:   table,
		decode:  decode,
		dir:     dir,
		svc:     svc,
		log:     log,
	}
}

// Store exposes the typed collection.
func (p *Page[T]) Store() *collection.Store[T] { return p.store }

// View exposes the typed derived view.
func (p *Page[T]) View() *view.View[T] { return p.view }

func (p *Page[T]) Feature() site.Feature { return p.feature }

// Fetch loads the page collection for scope.
func (p *Page[T]) Fetch(ctx context.Context, scope string) error {
	return p.store.FetchAll(ctx, scope)
}

func (p *Page[T]) Status() collection.Status { return p.store.Status() }

func (p *Page[T]) Err() error { return p.store.Err() }

// Apply replaces filters and sort with q after validating it.
func (p *Page[T]) Apply(q Query) error {
	return apply(p.view, q)
}

func (p *Page[T]) Headers() []string { return p.table.Headers }

// Rows renders the derived view.
func (p *Page[T]) Rows() [][]string {
	items := p.view.Items()
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = p.table.Row(item)
	}
	return rows
}

// Records returns the derived view for encoders.
func (p *Page[T]) Records() []any {
	items := p.view.Items()
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func (p *Page[T]) Len() int { return p.view.Len() }

// Total is the size of the unfiltered collection.
func (p *Page[T]) Total() int { return p.store.Len() }

func (p *Page[T]) Filters() view.Filters { return p.view.Filters() }

func (p *Page[T]) HasActiveFilters() bool { return p.view.HasActiveFilters() }

func (p *Page[T]) SetSearch(query string) { p.view.SetSearch(query) }

func (p *Page[T]) SetDate(d *view.Day) { p.view.SetDate(d) }

func (p *Page[T]) ToggleFacet(facet, value string) { p.view.ToggleFacet(facet, value) }

func (p *Page[T]) ResetFilters() { p.view.ResetFilters() }

func (p *Page[T]) FacetNames() []string { return p.view.Schema().Facets() }

// FacetOptions lists the values a facet can take. Id facets come from the
// directory; free-form facets collect the distinct values of the collection.
func (p *Page[T]) FacetOptions(facet string) []site.Option {
	if opts := p.dir.Options(facet); len(opts) > 0 {
		return opts
	}
	seen := map[string]bool{}
	var out []site.Option
	for _, item := range p.store.Items() {
		values, ok := p.view.Schema().FacetValues(item, facet)
		if !ok {
			return nil
		}
		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			label := v
			if facet == site.FacetStatuses {
				label = site.StatusLabel(v)
			}
			out = append(out, site.Option{Value: v, Label: label})
		}
	}
	sort.Slice(out, func(i, j int) bool { return view.CompareText(out[i].Label, out[j].Label) < 0 })
	return out
}

func (p *Page[T]) Sort() view.Sort { return p.view.Sort() }

func (p *Page[T]) SortFields() []string { return p.view.Schema().SortFields() }

func (p *Page[T]) ToggleSort(field string) { p.view.ToggleSort(field) }

// SelectAt opens the i-th derived row with a draft seeded from it.
func (p *Page[T]) SelectAt(i int) bool {
	item, ok := p.view.At(i)
	if !ok {
		return false
	}
	p.view.SelectWithDraft(item.Key(), p.table.Seed(item))
	return true
}

// SelectID opens the item with id whether or not the filters show it.
func (p *Page[T]) SelectID(id string) bool {
	item, ok := p.store.Get(id)
	if !ok {
		return false
	}
	p.view.SelectWithDraft(id, p.table.Seed(item))
	return true
}

func (p *Page[T]) CurrentID() string { return p.view.CurrentID() }

func (p *Page[T]) Deselect() { p.view.Deselect() }

func (p *Page[T]) EditDraft() *form.Draft { return p.view.EditDraft() }

// SubmitEdit validates the edit draft and writes it back.
func (p *Page[T]) SubmitEdit(ctx context.Context) error {
	if err := p.svc.Role.Require(site.CanEdit, p.feature); err != nil {
		return err
	}
	id := p.view.CurrentID()
	draft := p.view.EditDraft()
	if id == "" || draft == nil {
		return errors.New("app: nothing selected")
	}
	if !draft.Dirty() {
		return nil
	}
	item, err := form.Build(draft.Set(site.FieldID, id), p.decode)
	if err != nil {
		return err
	}
	item, err = p.write(ctx, item, func(body []byte) ([]byte, error) {
		return p.svc.Mutator.Update(ctx, string(p.feature), id, body)
	})
	if err != nil {
		return err
	}
	if err := p.store.Upsert(item); err != nil {
		return err
	}
	p.view.SelectWithDraft(id, p.table.Seed(item))
	return nil
}

func (p *Page[T]) OpenAdd() *form.Draft { return p.view.OpenAdd() }

func (p *Page[T]) CloseAdd() { p.view.CloseAdd() }

// SubmitAdd validates the add draft, creates the item and closes the
// overlay. The overlay stays open when validation fails.
func (p *Page[T]) SubmitAdd(ctx context.Context) error {
	if err := p.svc.Role.Require(site.CanAdd, p.feature); err != nil {
		return err
	}
	draft := p.view.AddDraft()
	if draft == nil {
		return errors.New("app: add form is not open")
	}
	item, err := form.Build(draft, p.decode)
	if err != nil {
		return err
	}
	item, err = p.write(ctx, item, func(body []byte) ([]byte, error) {
		return p.svc.Mutator.Create(ctx, string(p.feature), p.store.Scope(), body)
	})
	if err != nil {
		return err
	}
	if err := p.store.Upsert(item); err != nil {
		return err
	}
	p.view.CloseAdd()
	return nil
}

// write sends item through the mutator and decodes the stored version. An
// empty response keeps the local item.
func (p *Page[T]) write(ctx context.Context, item T, send func([]byte) ([]byte, error)) (T, error) {
	if p.svc.Mutator == nil {
		return item, ErrReadOnly
	}
	body, err := json.Marshal(item)
	if err != nil {
		return item, fmt.Errorf("app: encode %s: %w", p.feature, err)
	}
	resp, err := send(body)
	if err != nil {
		return item, err
	}
	if len(resp) == 0 {
		return item, nil
	}
	var stored T
	if err := json.Unmarshal(resp, &stored); err != nil || stored.Key() == "" {
		p.log.Debug().Err(err).Msg("keeping local copy of written item")
		return item, nil
	}
	return stored, nil
}

// ConfirmDeleteAt opens the delete overlay for the i-th derived row.
func (p *Page[T]) ConfirmDeleteAt(i int) bool {
	item, ok := p.view.At(i)
	if !ok {
		return false
	}
	p.view.ConfirmDelete(item)
	return true
}

// ConfirmDeleteID opens the delete overlay for the item with id.
func (p *Page[T]) ConfirmDeleteID(id string) bool {
	item, ok := p.store.Get(id)
	if !ok {
		return false
	}
	p.view.ConfirmDelete(item)
	return true
}

func (p *Page[T]) CloseDelete() { p.view.CloseDelete() }

// SubmitDelete deletes the item awaiting confirmation. Removing it from the
// store clears the selection and closes the overlay.
func (p *Page[T]) SubmitDelete(ctx context.Context) error {
	if err := p.svc.Role.Require(site.CanDelete, p.feature); err != nil {
		return err
	}
	item, ok := p.view.Deleting()
	if !ok {
		return errors.New("app: nothing to delete")
	}
	if p.svc.Mutator == nil {
		return ErrReadOnly
	}
	if err := p.svc.Mutator.Delete(ctx, string(p.feature), item.Key()); err != nil {
		return err
	}
	p.store.Remove(item.Key())
	p.view.CloseDelete()
	return nil
}

func (p *Page[T]) Overlays() view.Overlays { return p.view.Overlays() }

// Close detaches the view from its store.
func (p *Page[T]) Close() { p.view.Close() }
