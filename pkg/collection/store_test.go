package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type record struct {
	ID   string
	Name string
}

func (r record) Key() string { return r.ID }

func staticFetcher(byScope map[string][]record) Fetcher[record] {
	return FetcherFunc[record](func(_ context.Context, scope string) ([]record, error) {
		return byScope[scope], nil
	})
}

func TestFetchAllPopulatesItemsAndIndex(t *testing.T) {
	s := New[record](staticFetcher(map[string][]record{
		"p1": {{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
	}))
	if err := s.FetchAll(context.Background(), "p1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
	got, ok := s.Get("b")
	if !ok || got.Name != "B" {
		t.Fatalf("lookup b failed: %+v %v", got, ok)
	}
	if s.Status() != StatusReady {
		t.Fatalf("expected ready, got %s", s.Status())
	}
	if s.Scope() != "p1" {
		t.Fatalf("unexpected scope %q", s.Scope())
	}
}

func TestUpsertAndRemoveKeepIndexInSync(t *testing.T) {
	s := New[record](nil)
	s.Replace("p1", []record{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if err := s.Upsert(record{ID: "b", Name: "updated"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if keys := s.Keys(); len(keys) != 3 || keys[1] != "b" {
		t.Fatalf("upsert should replace in place, got %v", keys)
	}
	if err := s.Upsert(record{ID: "d"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !s.Remove("a") {
		t.Fatalf("expected a to be removed")
	}
	if s.Remove("a") {
		t.Fatalf("second remove should report false")
	}
	for i, key := range s.Keys() {
		got, ok := s.Get(key)
		if !ok || got.ID != key {
			t.Fatalf("index out of sync at %d for %q", i, key)
		}
	}
	if s.Has("a") {
		t.Fatalf("removed key still indexed")
	}
	got, _ := s.Get("b")
	if got.Name != "updated" {
		t.Fatalf("expected updated b, got %+v", got)
	}
}

func TestUpsertRequiresKey(t *testing.T) {
	s := New[record](nil)
	if err := s.Upsert(record{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestReplaceDeduplicatesKeys(t *testing.T) {
	s := New[record](nil)
	s.Replace("", []record{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "last"}})
	if s.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", s.Len())
	}
	got, _ := s.Get("a")
	if got.Name != "last" {
		t.Fatalf("expected last duplicate to win, got %q", got.Name)
	}
	if s.Keys()[0] != "a" {
		t.Fatalf("expected first position to be kept, got %v", s.Keys())
	}
}

func TestFetchFailureKeepsLastKnownItems(t *testing.T) {
	fail := false
	s := New[record](FetcherFunc[record](func(_ context.Context, scope string) ([]record, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []record{{ID: "a"}}, nil
	}))
	if err := s.FetchAll(context.Background(), "p1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	fail = true
	if err := s.FetchAll(context.Background(), "p1"); err != nil {
		t.Fatalf("non-fatal failure should be recovered, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected last-known items to survive, got %d", s.Len())
	}
	if s.Status() != StatusFailed || s.Err() == nil {
		t.Fatalf("expected failed status with error, got %s %v", s.Status(), s.Err())
	}
}

func TestFetchFailureOnNewScopeLeavesEmptyCollection(t *testing.T) {
	s := New[record](FetcherFunc[record](func(_ context.Context, scope string) ([]record, error) {
		if scope == "p2" {
			return nil, errors.New("timeout")
		}
		return []record{{ID: "a"}}, nil
	}))
	_ = s.FetchAll(context.Background(), "p1")
	_ = s.FetchAll(context.Background(), "p2")
	if s.Len() != 0 {
		t.Fatalf("items of p1 must not leak into p2, got %d", s.Len())
	}
}

func TestFatalFetchErrorIsReturned(t *testing.T) {
	denied := errors.New("forbidden")
	s := New[record](FetcherFunc[record](func(context.Context, string) ([]record, error) {
		return nil, Fatal(denied)
	}))
	err := s.FetchAll(context.Background(), "p1")
	if !errors.Is(err, denied) {
		t.Fatalf("expected wrapped forbidden error, got %v", err)
	}
	if !IsFatal(err) {
		t.Fatalf("expected fatal marker to survive wrapping")
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := New[record](FetcherFunc[record](func(ctx context.Context, scope string) ([]record, error) {
		if scope == "slow" {
			close(started)
			<-release
			return []record{{ID: "stale"}}, nil
		}
		return []record{{ID: "fresh"}}, nil
	}))

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = s.FetchAll(context.Background(), "slow")
	}()
	<-started

	if err := s.FetchAll(context.Background(), "fast"); err != nil {
		t.Fatalf("fetch fast: %v", err)
	}
	close(release)
	wg.Wait()

	if !errors.Is(slowErr, ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", slowErr)
	}
	if s.Scope() != "fast" || !s.Has("fresh") || s.Has("stale") {
		t.Fatalf("stale fetch overwrote newer data: scope=%q keys=%v", s.Scope(), s.Keys())
	}
}

func TestSupersededFetchContextIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	started := make(chan struct{})
	s := New[record](FetcherFunc[record](func(ctx context.Context, scope string) ([]record, error) {
		if scope == "slow" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}))
	done := make(chan error, 1)
	go func() { done <- s.FetchAll(context.Background(), "slow") }()
	<-started
	_ = s.FetchAll(context.Background(), "other")

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("superseded fetch context was not cancelled")
	}
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if s.Status() != StatusReady {
		t.Fatalf("stale failure must not change status, got %s", s.Status())
	}
}

func TestSubscribersObserveMutationsInOrder(t *testing.T) {
	s := New[record](nil, WithName("materials"))
	var got []Change
	cancel := s.Subscribe(func(c Change) { got = append(got, c) })

	s.Replace("p1", []record{{ID: "a"}})
	_ = s.Upsert(record{ID: "b"})
	s.Remove("a")
	s.Replace("p2", []record{{ID: "c"}})
	cancel()
	s.Remove("c")

	if len(got) != 4 {
		t.Fatalf("expected 4 changes, got %d", len(got))
	}
	want := []ChangeType{ChangeReplace, ChangeUpsert, ChangeRemove, ChangeReplace}
	for i, c := range got {
		if c.Action != want[i] {
			t.Fatalf("change %d: expected %s, got %s", i, want[i], c.Action)
		}
		if c.Store != "materials" {
			t.Fatalf("expected store name on change, got %q", c.Store)
		}
	}
	if got[0].ScopeChanged {
		t.Fatalf("initial load is not a scope change")
	}
	if !got[3].ScopeChanged {
		t.Fatalf("switching to p2 should report a scope change")
	}
	if got[2].ID != "a" {
		t.Fatalf("expected removal of a, got %q", got[2].ID)
	}
	if got[0].Revision >= got[1].Revision || got[1].Revision >= got[2].Revision {
		t.Fatalf("revisions must increase: %+v", got)
	}
}

func TestEventsChannelReceivesChanges(t *testing.T) {
	s := New[record](nil, WithEventBuffer(4))
	_ = s.Upsert(record{ID: "a"})
	select {
	case c := <-s.Events():
		if c.Action != ChangeUpsert || c.ID != "a" {
			t.Fatalf("unexpected change %s", c.Describe())
		}
	default:
		t.Fatal("expected buffered change")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	s := New[record](nil)
	s.Replace("", []record{{ID: "a", Name: "A"}})
	items := s.Items()
	items[0].Name = "mutated"
	got, _ := s.Get("a")
	if got.Name != "A" {
		t.Fatalf("Items must not expose internal storage")
	}
}
