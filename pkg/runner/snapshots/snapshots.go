// Package snapshots lists and prunes the local snapshot cache.
package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/sitelog/pkg/printers"
	"tableflip.dev/sitelog/pkg/store"
)

// Snapshots prints every saved snapshot, or deletes the ones matching
// Resource (and Scope when set) if Delete is true.
type Snapshots struct {
	Store    *store.Snapshots
	Resource string
	Scope    string
	Delete   bool

	JSON bool
	Out  io.Writer
}

// Entry describes one saved snapshot.
type Entry struct {
	Resource string    `json:"resource"`
	Scope    string    `json:"scope"`
	SavedAt  time.Time `json:"savedAt"`
	Count    int       `json:"count"`
}

func (s *Snapshots) Do(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("no snapshot store")
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}

	entries, err := s.entries(ctx)
	if err != nil {
		return err
	}

	if s.Delete {
		if s.Resource == "" {
			return errors.New("delete needs a resource")
		}
		for _, e := range entries {
			if err := s.Store.Delete(e.Resource, e.Scope); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "deleted %s %q\n", e.Resource, e.Scope)
		}
		return nil
	}

	if s.JSON {
		return printers.JSON(out, entries)
	}
	if len(entries) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(out, " no snapshots in "+s.Store.BasePath())
		return nil
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("RESOURCE"), bold.Sprint("SCOPE"), bold.Sprint("SAVED"), bold.Sprint("RECORDS"))
	for _, e := range entries {
		tbl.AddRow(e.Resource, e.Scope, e.SavedAt.Local().Format("2006-01-02 15:04"), e.Count)
	}
	tbl.RightAlign(3)
	_, _ = fmt.Fprintln(out, tbl)
	return nil
}

func (s *Snapshots) entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	for _, k := range s.Store.Keys(ctx) {
		if s.Resource != "" && k.Resource != s.Resource {
			continue
		}
		if s.Scope != "" && k.Scope != s.Scope {
			continue
		}
		snap, err := s.Store.Load(k.Resource, k.Scope)
		if err != nil {
			return nil, err
		}
		var items []json.RawMessage
		_ = json.Unmarshal(snap.Items, &items)
		out = append(out, Entry{Resource: k.Resource, Scope: k.Scope, SavedAt: snap.SavedAt, Count: len(items)})
	}
	return out, nil
}
