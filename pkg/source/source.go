// Package source adapts raw collection transports (the REST API, the snapshot
// cache) into typed collection.Fetchers.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
)

// Raw fetches the JSON array of a resource for a scope.
type Raw interface {
	FetchRaw(ctx context.Context, resource, scope string) ([]byte, error)
}

// RawFunc adapts a function to Raw.
type RawFunc func(ctx context.Context, resource, scope string) ([]byte, error)

// FetchRaw implements Raw.
func (f RawFunc) FetchRaw(ctx context.Context, resource, scope string) ([]byte, error) {
	return f(ctx, resource, scope)
}

// Saver persists a successful fetch.
type Saver interface {
	Save(resource, scope string, items []byte) error
}

// JSON decodes resource from raw into items of type T. A body that is not a
// JSON array is a fatal error: retrying will not fix it.
func JSON[T collection.Item](raw Raw, resource string) collection.Fetcher[T] {
	return collection.FetcherFunc[T](func(ctx context.Context, scope string) ([]T, error) {
		b, err := raw.FetchRaw(ctx, resource, scope)
		if err != nil {
			return nil, err
		}
		return Decode[T](resource, b)
	})
}

// Decode parses a JSON array of T.
func Decode[T any](resource string, b []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, collection.Fatal(fmt.Errorf("source: decode %s: %w", resource, err))
	}
	return items, nil
}

// Cached serves resources from primary and records every success in saver.
// When primary fails with a recoverable error the fallback is consulted, so
// pages show the last saved copy instead of nothing. Fatal errors are never
// masked.
type Cached struct {
	Primary  Raw
	Fallback Raw
	Saver    Saver
	Log      zerolog.Logger
}

// FetchRaw implements Raw.
func (c *Cached) FetchRaw(ctx context.Context, resource, scope string) ([]byte, error) {
	b, err := c.Primary.FetchRaw(ctx, resource, scope)
	if err == nil {
		if c.Saver != nil {
			if serr := c.Saver.Save(resource, scope, b); serr != nil {
				c.Log.Warn().Err(serr).Str("resource", resource).Msg("could not save snapshot")
			}
		}
		return b, nil
	}
	if collection.IsFatal(err) || c.Fallback == nil || errors.Is(err, context.Canceled) {
		return nil, err
	}
	fb, ferr := c.Fallback.FetchRaw(ctx, resource, scope)
	if ferr != nil {
		c.Log.Debug().Err(ferr).Str("resource", resource).Msg("no fallback snapshot")
		return nil, err
	}
	c.Log.Warn().Err(err).Str("resource", resource).Str("scope", scope).Msg("serving saved snapshot")
	return fb, nil
}
