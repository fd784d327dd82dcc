package collection

import (
	"context"
	"errors"
)

// Fetcher produces the full set of items for a scope (for example a project
// id). Implementations are expected to honour ctx cancellation.
type Fetcher[T Item] interface {
	Fetch(ctx context.Context, scope string) ([]T, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc[T Item] func(ctx context.Context, scope string) ([]T, error)

// Fetch implements Fetcher.
func (f FetcherFunc[T]) Fetch(ctx context.Context, scope string) ([]T, error) {
	return f(ctx, scope)
}

// ErrSuperseded is returned by FetchAll when a newer FetchAll call started
// before this one completed. The stale result is discarded.
var ErrSuperseded = errors.New("collection: fetch superseded by a newer request")

type fatalError struct {
	err error
}

func (f *fatalError) Error() string { return f.err.Error() }

func (f *fatalError) Unwrap() error { return f.err }

// Fatal marks err as a fetch failure the store must surface to its caller
// instead of recovering into an empty or last-known state.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err (or anything it wraps) was marked with Fatal.
func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}
