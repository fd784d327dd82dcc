// Package serve runs the local JSON API.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/server"
	"tableflip.dev/sitelog/pkg/store"
)

// Serve exposes Service over HTTP until ctx is cancelled.
type Serve struct {
	Service *app.Service
	// Snapshots, when set, is watched and its changes logged.
	Snapshots   *store.Snapshots
	Addr        string
	OnListening func(net.Addr)
	Log         zerolog.Logger
}

func (s Serve) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("serve requires a service")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	addr := s.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	httpSrv := &http.Server{
		Handler:           server.New(s.Service).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.OnListening != nil {
		s.OnListening(ln.Addr())
	}
	s.Log.Info().Str("addr", ln.Addr().String()).Msg("serving")

	if s.Snapshots != nil {
		if err := s.watch(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("snapshot changes will not be reported")
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	err = httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s Serve) watch(ctx context.Context) error {
	events, err := s.Snapshots.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for ev := range events {
			if ev.Type == store.EventInvalidated {
				s.Log.Info().Msg("snapshot cache changed")
				continue
			}
			s.Log.Info().Str("resource", ev.Resource).Str("scope", ev.Scope).Msg("snapshot updated")
		}
	}()
	return nil
}
