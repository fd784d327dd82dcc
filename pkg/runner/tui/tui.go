package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/store"
	"tableflip.dev/sitelog/pkg/tui"
)

// TUI runs the interactive page UI.
type TUI struct {
	Service *app.Service
	Feature site.Feature
	Scope   string
	// Snapshots, when set, is watched so changes written by other
	// processes show up without a manual reload.
	Snapshots *store.Snapshots
}

func (t *TUI) Do(ctx context.Context) error {
	if t.Service == nil {
		return fmt.Errorf("tui: service required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := t.Service.NewSession()
	defer session.Close()

	var events <-chan store.Event
	if t.Snapshots != nil {
		ch, err := t.Snapshots.Watch(ctx)
		if err != nil {
			t.Service.Log.Warn().Err(err).Msg("snapshot watch unavailable")
		} else {
			events = ch
		}
	}

	model, err := tui.New(ctx, tui.Options{
		Session: session,
		Scope:   t.Scope,
		Feature: t.Feature,
		Events:  events,
	})
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
