package view

import (
	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/form"
)

// selection tracks the open item and the add/delete overlays of a page.
//
// A selected id survives filtering: it is cleared only by Deselect, by the
// store dropping the id, or by a scope switch.
type selection[T any] struct {
	currentID string
	edit      *form.Draft

	showAdd bool
	add     *form.Draft

	showDelete bool
	deleting   *T
}

// Overlays is a read-only copy of the overlay flags.
type Overlays struct {
	ShowAdd    bool
	ShowDelete bool
	DeletingID string
}

// Select opens id for detail/edit and starts a fresh edit draft.
func (v *View[T]) Select(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id == v.sel.currentID {
		return
	}
	v.sel.currentID = id
	v.sel.edit = nil
	if id != "" {
		v.sel.edit = form.NewDraft()
	}
}

// SelectWithDraft opens id and seeds the edit draft with initial values.
func (v *View[T]) SelectWithDraft(id string, initial map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.currentID = id
	v.sel.edit = nil
	if id != "" {
		v.sel.edit = form.Seed(initial)
	}
}

// Deselect closes the open item and drops its edit draft.
func (v *View[T]) Deselect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clearSelectionLocked()
}

// CurrentID returns the selected id, or "" when nothing is open.
func (v *View[T]) CurrentID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reconcileSelectionLocked()
	return v.sel.currentID
}

// Current resolves the selected item from the store.
func (v *View[T]) Current() (T, bool) {
	id := v.CurrentID()
	if id == "" {
		var zero T
		return zero, false
	}
	return v.store.Get(id)
}

// EditDraft returns the edit buffer of the selected item, or nil.
func (v *View[T]) EditDraft() *form.Draft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.edit
}

// OpenAdd shows the add overlay with an empty draft.
func (v *View[T]) OpenAdd() *form.Draft {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.showAdd = true
	v.sel.add = form.NewDraft()
	return v.sel.add
}

// AddDraft returns the add-form buffer, or nil when the overlay is closed.
func (v *View[T]) AddDraft() *form.Draft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.add
}

// CloseAdd hides the add overlay and drops its draft.
func (v *View[T]) CloseAdd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.showAdd = false
	v.sel.add = nil
}

// ConfirmDelete opens the delete overlay for item.
func (v *View[T]) ConfirmDelete(item T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sel.showDelete = true
	v.sel.deleting = &item
}

// Deleting returns the item awaiting delete confirmation.
func (v *View[T]) Deleting() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sel.deleting == nil {
		var zero T
		return zero, false
	}
	return *v.sel.deleting, true
}

// CloseDelete hides the delete overlay and forgets the pending item.
func (v *View[T]) CloseDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeDeleteLocked()
}

// Overlays returns the overlay flags.
func (v *View[T]) Overlays() Overlays {
	v.mu.Lock()
	defer v.mu.Unlock()
	o := Overlays{ShowAdd: v.sel.showAdd, ShowDelete: v.sel.showDelete}
	if v.sel.deleting != nil {
		o.DeletingID = (*v.sel.deleting).Key()
	}
	return o
}

func (v *View[T]) closeDeleteLocked() {
	v.sel.showDelete = false
	v.sel.deleting = nil
}

func (v *View[T]) clearSelectionLocked() {
	v.sel.currentID = ""
	v.sel.edit = nil
}

// reconcileSelectionLocked drops a selection whose id left a loaded store.
// While a fetch is in flight the id is kept so route-driven selection can
// precede the data.
func (v *View[T]) reconcileSelectionLocked() {
	if v.sel.currentID == "" {
		return
	}
	if v.store.Status() == collection.StatusLoading {
		return
	}
	if v.store.Status() == collection.StatusIdle {
		return
	}
	if !v.store.Has(v.sel.currentID) {
		v.clearSelectionLocked()
	}
}

func (v *View[T]) onChange(c collection.Change) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch c.Action {
	case collection.ChangeRemove:
		if c.ID == v.sel.currentID {
			v.clearSelectionLocked()
		}
		if v.sel.deleting != nil && (*v.sel.deleting).Key() == c.ID {
			v.closeDeleteLocked()
		}
	case collection.ChangeReplace:
		if c.ScopeChanged {
			v.clearSelectionLocked()
			v.closeDeleteLocked()
			return
		}
		if v.sel.currentID != "" && !v.store.Has(v.sel.currentID) {
			v.clearSelectionLocked()
		}
	}
}
