package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/form"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
)

// Session is one user's set of pages over a shared directory. It is created
// per TUI run, HTTP request or tool call and torn down with Close.
type Session struct {
	svc   *Service
	scope string

	Directory  *site.Directory
	Events     *Page[site.Event]
	Materials  *Page[site.Material]
	Violations *Page[site.Violation]
	Visits     *Page[site.Visit]
}

// NewSession builds empty pages. Nothing is fetched until Load.
func (s *Service) NewSession() *Session {
	loc := s.location()
	dir := site.NewDirectory(
		fetcher[site.User](s, site.Users),
		fetcher[site.Object](s, site.Objects),
		fetcher[site.Organization](s, site.Organizations),
		s.Log,
	)
	return &Session{
		svc:       s,
		Directory: dir,
		Events: newPage(s, dir, site.Events, fetcher[site.Event](s, site.Events),
			site.EventSchema(dir, loc), site.EventTable(dir, loc),
			func(v form.Values) (site.Event, error) { return site.EventFromValues(v, s.Now) }),
		Materials: newPage(s, dir, site.Materials, fetcher[site.Material](s, site.Materials),
			site.MaterialSchema(dir, loc), site.MaterialTable(dir, loc),
			func(v form.Values) (site.Material, error) { return site.MaterialFromValues(v, s.Now) }),
		Violations: newPage(s, dir, site.Violations, fetcher[site.Violation](s, site.Violations),
			site.ViolationSchema(dir, loc), site.ViolationTable(dir, loc),
			func(v form.Values) (site.Violation, error) { return site.ViolationFromValues(v, s.Now, loc) }),
		Visits: newPage(s, dir, site.Visits, fetcher[site.Visit](s, site.Visits),
			site.VisitSchema(dir, loc), site.VisitTable(dir, loc),
			func(v form.Values) (site.Visit, error) { return site.VisitFromValues(v, s.Now) }),
	}
}

func fetcher[T collection.Item](s *Service, f site.Feature) collection.Fetcher[T] {
	if s.Raw == nil {
		return nil
	}
	return source.JSON[T](s.Raw, string(f))
}

// Page returns the page for feature.
func (s *Session) Page(f site.Feature) (Pager, error) {
	switch f {
	case site.Events:
		return s.Events, nil
	case site.Materials:
		return s.Materials, nil
	case site.Violations:
		return s.Violations, nil
	case site.Visits:
		return s.Visits, nil
	}
	return nil, fmt.Errorf("%w: %q has no page", site.ErrUnknownFeature, f)
}

// Scope returns the scope of the last Load.
func (s *Session) Scope() string {
	return s.scope
}

// Load fetches the directory and the given pages (all pages when none are
// named) for scope concurrently. Recoverable failures leave the affected
// stores empty or stale and are reported by their Err; only fatal errors are
// returned.
func (s *Session) Load(ctx context.Context, scope string, features ...site.Feature) error {
	if len(features) == 0 {
		features = site.Pages
	}
	s.scope = scope
	started := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	fetch := func(name string, fn func(context.Context, string) error) {
		g.Go(func() error {
			if err := fn(ctx, scope); err != nil && !errors.Is(err, collection.ErrSuperseded) {
				return fmt.Errorf("app: load %s: %w", name, err)
			}
			return nil
		})
	}
	if s.svc.Raw != nil {
		fetch(string(site.Users), s.Directory.Users.FetchAll)
		fetch(string(site.Objects), s.Directory.Objects.FetchAll)
		fetch(string(site.Organizations), s.Directory.Organizations.FetchAll)
	}
	for _, f := range features {
		p, err := s.Page(f)
		if err != nil {
			return err
		}
		if s.svc.Raw == nil {
			continue
		}
		fetch(string(f), p.Fetch)
	}
	err := g.Wait()
	s.svc.Log.Debug().Str("scope", scope).Dur("took", time.Since(started)).Msg("session loaded")
	return err
}

// Refetch reloads one resource in the current scope, for change
// notifications from the snapshot watcher.
func (s *Session) Refetch(ctx context.Context, resource string) error {
	f, err := site.ParseFeature(resource)
	if err != nil {
		return err
	}
	switch f {
	case site.Users:
		return s.Directory.Users.FetchAll(ctx, s.scope)
	case site.Objects:
		return s.Directory.Objects.FetchAll(ctx, s.scope)
	case site.Organizations:
		return s.Directory.Organizations.FetchAll(ctx, s.scope)
	}
	p, err := s.Page(f)
	if err != nil {
		return err
	}
	return p.Fetch(ctx, s.scope)
}

// Close detaches every page.
func (s *Session) Close() {
	s.Events.Close()
	s.Materials.Close()
	s.Violations.Close()
	s.Visits.Close()
}
