package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a snapshot change notification.
type EventType int

const (
	// EventSnapshotChanged indicates one snapshot file was written or removed.
	EventSnapshotChanged EventType = iota

	// EventInvalidated signals a change that could not be attributed to a
	// single snapshot; callers should reload everything.
	EventInvalidated
)

// Event is emitted by Watch when the snapshot directory changes.
type Event struct {
	Type     EventType
	Resource string
	Scope    string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (s *Snapshots) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn().Err(err).Msg("watcher close")
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)
	go s.watchLoop(ctx, watcher, dirs, events, closeWatcher)
	return events, nil
}

// watchLoop translates fsnotify activity into Events. Bursts are coalesced:
// each distinct event is delivered once per throttle window.
func (s *Snapshots) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, dirs []string, events chan<- Event, closeWatcher func()) {
	defer close(events)
	defer closeWatcher()

	watched := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		watched[dir] = true
	}

	batch := newEventBatch(100 * time.Millisecond)
	defer batch.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-batch.Ready():
			for _, ev := range batch.Drain() {
				select {
				case events <- ev:
				default:
					s.log.Debug().Str("resource", ev.Resource).Msg("dropping snapshot event, consumer busy")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watcher error")
			batch.Add(Event{Type: EventInvalidated})
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if evt.Op&fsnotify.Create != 0 && s.watchNewDir(watcher, watched, evt.Name) {
				continue
			}
			if key, ok := s.keyForPath(evt.Name); ok {
				batch.Add(Event{Type: EventSnapshotChanged, Resource: key.Resource, Scope: key.Scope})
			} else {
				batch.Add(Event{Type: EventInvalidated})
			}
		}
	}
}

// watchNewDir starts watching path when it is a new resource directory. It
// reports whether path was a directory.
func (s *Snapshots) watchNewDir(watcher *fsnotify.Watcher, watched map[string]bool, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	dir := filepath.Clean(path)
	if watched[dir] {
		return true
	}
	if err := watcher.Add(dir); err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("watch directory")
		return true
	}
	watched[dir] = true
	return true
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// keyForPath maps <base>/<resource>/<scope>.json back to a Key. diskv writes
// through temp files, which are ignored.
func (s *Snapshots) keyForPath(path string) (Key, bool) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return Key{}, false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 || !strings.HasSuffix(parts[1], fileExt) {
		return Key{}, false
	}
	scope, ok := decodeScope(strings.TrimSuffix(parts[1], fileExt))
	if !ok {
		return Key{}, false
	}
	return Key{Resource: parts[0], Scope: scope}, true
}

// eventBatch collects events until its window closes. Ready fires once per
// window; Drain hands out the distinct events in arrival order.
type eventBatch struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	seen    map[Event]bool
	pending []Event
	ready   chan struct{}
}

func newEventBatch(window time.Duration) *eventBatch {
	return &eventBatch{
		window: window,
		seen:   map[Event]bool{},
		ready:  make(chan struct{}, 1),
	}
}

func (b *eventBatch) Add(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen[ev] {
		return
	}
	b.seen[ev] = true
	b.pending = append(b.pending, ev)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, func() {
			select {
			case b.ready <- struct{}{}:
			default:
			}
		})
	}
}

func (b *eventBatch) Ready() <-chan struct{} {
	return b.ready
}

func (b *eventBatch) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	b.seen = map[Event]bool{}
	b.timer = nil
	return out
}

func (b *eventBatch) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
