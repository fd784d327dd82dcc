// Package app wires collection stores, views and the site schemas into
// sessions that CLIs, the TUI and the HTTP server share.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
)

// ErrReadOnly is returned by mutations when no Mutator is configured.
var ErrReadOnly = errors.New("app: no mutator configured")

// Mutator persists page changes. api.Client satisfies it.
type Mutator interface {
	Create(ctx context.Context, resource, scope string, body []byte) ([]byte, error)
	Update(ctx context.Context, resource, id string, body []byte) ([]byte, error)
	Delete(ctx context.Context, resource, id string) error
}

// Service holds what every session needs. It has no state of its own; each
// page, request or tool call opens a Session.
type Service struct {
	Raw      source.Raw
	Mutator  Mutator
	Role     site.Role
	Location *time.Location
	Log      zerolog.Logger
	Now      site.Clock
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}
