package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/store"
)

type testConfig string

func (c testConfig) BasePath() string { return string(c) }

func seeded(t *testing.T) *store.Snapshots {
	t.Helper()
	s, err := store.Open(testConfig(t.TempDir()), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, k := range []store.Key{{Resource: "visits", Scope: "p1"}, {Resource: "visits", Scope: "p2"}, {Resource: "users", Scope: ""}} {
		if err := s.Save(k.Resource, k.Scope, []byte(`[{"id":"a"},{"id":"b"}]`)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	return s
}

func TestListSnapshots(t *testing.T) {
	var buf bytes.Buffer
	s := Snapshots{Store: seeded(t), JSON: true, Out: &buf}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].Resource != "users" || got[1].Scope != "p1" || got[2].Count != 2 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestListSnapshotsTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	s := Snapshots{Store: seeded(t), Resource: "visits", Out: &buf}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(buf.String(), "users") || !strings.Contains(buf.String(), "p2") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
}

func TestDeleteSnapshots(t *testing.T) {
	snaps := seeded(t)
	s := Snapshots{Store: snaps, Resource: "visits", Scope: "p1", Delete: true, Out: &bytes.Buffer{}}
	if err := s.Do(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	keys := snaps.Keys(context.Background())
	if len(keys) != 2 {
		t.Fatalf("expected one snapshot gone, got %+v", keys)
	}
	for _, k := range keys {
		if k.Resource == "visits" && k.Scope == "p1" {
			t.Fatalf("p1 visits should be deleted")
		}
	}
}
