// Package collection holds client-resident copies of server collections.
//
// A Store mirrors the behaviour of an informer cache: it owns the raw slice of
// items and an id index kept in lockstep with it, replaces its contents from a
// Fetcher, applies local upserts/removals, and notifies subscribers after each
// mutation. Readers take consistent snapshots and never mutate the store.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Item is the minimal contract for records held in a Store.
type Item interface {
	Key() string
}

// Status describes the fetch lifecycle of a Store.
type Status int

const (
	// StatusIdle means nothing was fetched yet.
	StatusIdle Status = iota
	// StatusLoading means a FetchAll is in flight.
	StatusLoading
	// StatusReady means the last FetchAll (or Replace) succeeded.
	StatusReady
	// StatusFailed means the last FetchAll failed; items hold the last-known
	// value for the scope, or nothing if the scope changed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Store keeps one collection for one scope at a time.
type Store[T Item] struct {
	name    string
	fetcher Fetcher[T]
	log     zerolog.Logger

	mu     sync.RWMutex
	items  []T
	index  map[string]int
	scope  string
	status Status
	err    error
	rev    uint64
	gen    uint64
	cancel context.CancelFunc

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	eventCh chan Change
}

// Option customises a Store.
type Option func(*options)

type options struct {
	name   string
	log    zerolog.Logger
	buffer int
}

// WithName labels the store in logs and change notifications.
func WithName(name string) Option {
	return func(o *options) {
		o.name = strings.TrimSpace(name)
	}
}

// WithLogger sets the logger used for recovered fetch failures.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithEventBuffer sizes the Events channel. Changes are dropped when the
// channel is full.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// New creates an empty store backed by fetcher. fetcher may be nil for stores
// that are only populated through Replace.
func New[T Item](fetcher Fetcher[T], opts ...Option) *Store[T] {
	o := &options{
		name:   "collection",
		log:    zerolog.Nop(),
		buffer: 64,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Store[T]{
		name:    o.name,
		fetcher: fetcher,
		log:     o.log.With().Str("store", o.name).Logger(),
		index:   make(map[string]int),
		subs:    make(map[int]func(Change)),
		eventCh: make(chan Change, o.buffer),
	}
}

// Name returns the store label.
func (s *Store[T]) Name() string {
	return s.name
}

// FetchAll replaces the collection with the fetcher's view of scope.
//
// A call supersedes every call still in flight: the older contexts are
// cancelled and their results discarded, so the last issued request wins
// regardless of completion order. Switching to a different scope clears the
// collection immediately.
//
// Fetch failures are recovered: the store keeps its last-known items for the
// same scope, records the error in Err and logs it. Only errors marked with
// Fatal are returned. A superseded call returns ErrSuperseded.
func (s *Store[T]) FetchAll(ctx context.Context, scope string) error {
	if s.fetcher == nil {
		return errors.New("collection: no fetcher configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	scopeChanged := s.status != StatusIdle && scope != s.scope
	var change *Change
	if scope != s.scope {
		s.scope = scope
		s.setItemsLocked(nil)
		change = &Change{Action: ChangeReplace, Scope: scope, Revision: s.rev, ScopeChanged: scopeChanged}
	}
	s.status = StatusLoading
	s.err = nil
	s.mu.Unlock()
	if change != nil {
		s.notify(*change)
	}

	items, err := s.fetcher.Fetch(ctx, scope)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug().Str("scope", scope).Msg("discarding superseded fetch")
		return ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.mu.Unlock()
		if IsFatal(err) {
			s.log.Error().Err(err).Str("scope", scope).Msg("fetch failed")
			return fmt.Errorf("collection: fetch %s: %w", s.name, err)
		}
		s.log.Warn().Err(err).Str("scope", scope).Msg("fetch failed, keeping last-known items")
		return nil
	}
	s.setItemsLocked(items)
	s.status = StatusReady
	ch := Change{Action: ChangeReplace, Scope: scope, Revision: s.rev}
	s.mu.Unlock()
	s.notify(ch)
	return nil
}

// Replace swaps the collection for scope without consulting the fetcher.
// Any in-flight FetchAll is superseded.
func (s *Store[T]) Replace(scope string, items []T) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	scopeChanged := s.status != StatusIdle && scope != s.scope
	s.scope = scope
	s.setItemsLocked(items)
	s.status = StatusReady
	s.err = nil
	ch := Change{Action: ChangeReplace, Scope: scope, Revision: s.rev, ScopeChanged: scopeChanged}
	s.mu.Unlock()
	s.notify(ch)
}

// Upsert inserts item or replaces the item with the same key in place.
func (s *Store[T]) Upsert(item T) error {
	id := strings.TrimSpace(item.Key())
	if id == "" {
		return errors.New("collection: item key required")
	}
	s.mu.Lock()
	if idx, ok := s.index[id]; ok {
		s.items[idx] = item
	} else {
		s.items = append(s.items, item)
		s.index[id] = len(s.items) - 1
	}
	s.rev++
	ch := Change{Action: ChangeUpsert, ID: id, Scope: s.scope, Revision: s.rev}
	s.mu.Unlock()
	s.notify(ch)
	return nil
}

// Remove deletes the item with the given key. It reports whether anything
// was removed.
func (s *Store[T]) Remove(id string) bool {
	s.mu.Lock()
	idx, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.reindexLocked()
	s.rev++
	ch := Change{Action: ChangeRemove, ID: id, Scope: s.scope, Revision: s.rev}
	s.mu.Unlock()
	s.notify(ch)
	return true
}

// Get resolves an item by key.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[idx], true
}

// Has reports whether an item with the key is present.
func (s *Store[T]) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Items returns a copy of the collection in store order.
func (s *Store[T]) Items() []T {
	items, _ := s.Snapshot()
	return items
}

// Snapshot returns a copy of the collection together with the revision it
// corresponds to.
func (s *Store[T]) Snapshot() ([]T, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out, s.rev
}

// Keys returns the item keys in store order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.items))
	for i, item := range s.items {
		keys[i] = item.Key()
	}
	return keys
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Scope returns the scope the collection belongs to.
func (s *Store[T]) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

// Status returns the fetch status.
func (s *Store[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Loading reports whether a fetch is in flight.
func (s *Store[T]) Loading() bool {
	return s.Status() == StatusLoading
}

// Err returns the error recorded by the last failed fetch.
func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Revision increases on every mutation of the collection.
func (s *Store[T]) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Subscribe registers fn to be called synchronously after each mutation, on
// the goroutine that performed it. The returned function unsubscribes.
func (s *Store[T]) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Events exposes changes for event loops that prefer a channel, such as a
// Bubble Tea subscription.
func (s *Store[T]) Events() <-chan Change {
	return s.eventCh
}

func (s *Store[T]) notify(ch Change) {
	ch.Store = s.name

	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}

	select {
	case s.eventCh <- ch:
	default:
	}
}

// setItemsLocked replaces items and rebuilds the index. Duplicate keys keep
// the position of the first occurrence and the value of the last one.
func (s *Store[T]) setItemsLocked(items []T) {
	s.items = make([]T, 0, len(items))
	s.index = make(map[string]int, len(items))
	for _, item := range items {
		id := item.Key()
		if idx, ok := s.index[id]; ok {
			s.items[idx] = item
			continue
		}
		s.items = append(s.items, item)
		s.index[id] = len(s.items) - 1
	}
	s.rev++
}

func (s *Store[T]) reindexLocked() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		s.index[item.Key()] = i
	}
}
