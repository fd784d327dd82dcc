// Package seed imports collections into the snapshot cache, so pages can be
// browsed without an API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
	"tableflip.dev/sitelog/pkg/store"
)

// Import validates a JSON array of records and saves it as the snapshot of
// Feature for Scope.
type Import struct {
	Snapshots *store.Snapshots
	Feature   site.Feature
	Scope     string
	// Path is the file to read; "-" or "" reads In.
	Path string
	In   io.Reader
	Out  io.Writer
}

func (i *Import) Do(ctx context.Context) error {
	if i.Snapshots == nil {
		return errors.New("can not import, no snapshot store")
	}
	b, err := i.read()
	if err != nil {
		return err
	}
	n, err := Validate(i.Feature, b)
	if err != nil {
		return err
	}
	if err := i.Snapshots.Save(string(i.Feature), i.Scope, b); err != nil {
		return err
	}

	out := i.Out
	if out == nil {
		out = color.Output
	}
	scope := i.Scope
	if scope == "" {
		scope = "(no scope)"
	}
	_, _ = fmt.Fprintf(out, "imported %d %s into %s\n", n, i.Feature, scope)
	return nil
}

func (i *Import) read() ([]byte, error) {
	if i.Path == "" || i.Path == "-" {
		if i.In == nil {
			return nil, errors.New("no input")
		}
		return io.ReadAll(i.In)
	}
	return os.ReadFile(i.Path)
}

// Validate decodes b as records of f and returns how many it holds. Every
// record needs an id.
func Validate(f site.Feature, b []byte) (int, error) {
	switch f {
	case site.Events:
		return count[site.Event](f, b)
	case site.Materials:
		return count[site.Material](f, b)
	case site.Violations:
		return count[site.Violation](f, b)
	case site.Visits:
		return count[site.Visit](f, b)
	case site.Users:
		return count[site.User](f, b)
	case site.Objects:
		return count[site.Object](f, b)
	case site.Organizations:
		return count[site.Organization](f, b)
	}
	return 0, fmt.Errorf("%w: %q", site.ErrUnknownFeature, f)
}

func count[T interface{ Key() string }](f site.Feature, b []byte) (int, error) {
	items, err := source.Decode[T](string(f), b)
	if err != nil {
		return 0, err
	}
	for n, item := range items {
		if item.Key() == "" {
			return 0, fmt.Errorf("%s record %d has no id", f, n)
		}
	}
	return len(items), nil
}
