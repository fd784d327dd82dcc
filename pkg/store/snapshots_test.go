package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func openTemp(t *testing.T) *Snapshots {
	t.Helper()
	s, err := Open(testConfig{path: t.TempDir()}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestSaveAndFetchRaw(t *testing.T) {
	s := openTemp(t)
	items := []byte(`[{"id":"m1","name":"Бетон"}]`)
	if err := s.Save("materials", "project/42", items); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.FetchRaw(context.Background(), "materials", "project/42")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != string(items) {
		t.Fatalf("expected %s, got %s", items, got)
	}
	snap, err := s.Load("materials", "project/42")
	if err != nil || snap.SavedAt.IsZero() || snap.Scope != "project/42" {
		t.Fatalf("unexpected snapshot %+v %v", snap, err)
	}
}

func TestMissingSnapshot(t *testing.T) {
	s := openTemp(t)
	_, err := s.FetchRaw(context.Background(), "visits", "")
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	if err := s.Delete("visits", ""); err != nil {
		t.Fatalf("deleting a missing snapshot should be a no-op: %v", err)
	}
}

func TestSaveRejectsInvalidJSON(t *testing.T) {
	s := openTemp(t)
	if err := s.Save("events", "p1", []byte(`{oops`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestKeysRoundTripScopes(t *testing.T) {
	s := openTemp(t)
	for _, k := range []Key{{"visits", ""}, {"events", "p-1"}, {"events", "p1"}} {
		if err := s.Save(k.Resource, k.Scope, []byte(`[]`)); err != nil {
			t.Fatalf("save %+v: %v", k, err)
		}
	}
	keys := s.Keys(context.Background())
	want := []Key{{"events", "p-1"}, {"events", "p1"}, {"visits", ""}}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
	if err := s.Delete("events", "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Keys(context.Background())) != 2 {
		t.Fatalf("expected delete to remove one key")
	}
}
