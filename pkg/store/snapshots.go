// Package store persists fetched collections on disk so list pages keep
// working when the API is unreachable.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"
)

// ErrNoSnapshot is returned when nothing was saved for a resource and scope.
var ErrNoSnapshot = errors.New("store: no snapshot")

const (
	fileExt    = ".json"
	emptyScope = "~"
)

// Config locates the snapshot directory.
type Config interface {
	BasePath() string
}

// Snapshot is one saved collection.
type Snapshot struct {
	Resource string          `json:"resource"`
	Scope    string          `json:"scope"`
	SavedAt  time.Time       `json:"savedAt"`
	Items    json.RawMessage `json:"items"`
}

// Key identifies a snapshot.
type Key struct {
	Resource string
	Scope    string
}

// Snapshots is a diskv-backed snapshot cache, one file per resource and
// scope under <base>/<resource>/.
type Snapshots struct {
	d        *diskv.Diskv
	basePath string
	log      zerolog.Logger
	now      func() time.Time
}

// Open creates the snapshot cache rooted at cfg.BasePath().
func Open(cfg Config, log zerolog.Logger) (*Snapshots, error) {
	if cfg == nil || cfg.BasePath() == "" {
		return nil, errors.New("store: base path required")
	}
	basePath := cfg.BasePath()
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Snapshots{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      4 * 1024 * 1024, // 4MB
		}),
		basePath: basePath,
		log:      log.With().Str("component", "snapshots").Logger(),
		now:      time.Now,
	}, nil
}

// BasePath returns the snapshot directory.
func (s *Snapshots) BasePath() string {
	return s.basePath
}

// Save stores items, a JSON array, for resource and scope.
func (s *Snapshots) Save(resource, scope string, items []byte) error {
	if !json.Valid(items) {
		return fmt.Errorf("store: %s snapshot is not valid JSON", resource)
	}
	b, err := json.Marshal(Snapshot{
		Resource: resource,
		Scope:    scope,
		SavedAt:  s.now().UTC(),
		Items:    json.RawMessage(items),
	})
	if err != nil {
		return fmt.Errorf("store: encode %s snapshot: %w", resource, err)
	}
	if err := s.d.Write(toKey(resource, scope), b); err != nil {
		return fmt.Errorf("store: write %s snapshot: %w", resource, err)
	}
	s.log.Debug().Str("resource", resource).Str("scope", scope).Int("bytes", len(items)).Msg("snapshot saved")
	return nil
}

// Load reads the snapshot for resource and scope.
func (s *Snapshots) Load(resource, scope string) (Snapshot, error) {
	key := toKey(resource, scope)
	if !s.d.Has(key) {
		return Snapshot{}, fmt.Errorf("%w for %s in scope %q", ErrNoSnapshot, resource, scope)
	}
	b, err := s.d.Read(key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: read %s snapshot: %w", resource, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("store: decode %s snapshot: %w", resource, err)
	}
	return snap, nil
}

// FetchRaw returns the saved items of resource in scope, so the cache can
// stand in for the API.
func (s *Snapshots) FetchRaw(ctx context.Context, resource, scope string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.Load(resource, scope)
	if err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (s *Snapshots) Delete(resource, scope string) error {
	key := toKey(resource, scope)
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Keys lists the saved snapshots sorted by resource then scope.
func (s *Snapshots) Keys(ctx context.Context) []Key {
	var out []Key
	for raw := range s.d.Keys(ctx.Done()) {
		k, ok := fromKey(raw)
		if !ok {
			s.log.Warn().Str("key", raw).Msg("skipping unrecognised snapshot")
			continue
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Scope < out[j].Scope
	})
	return out
}

func encodeScope(scope string) string {
	if scope == "" {
		return emptyScope
	}
	return base64.RawURLEncoding.EncodeToString([]byte(scope))
}

func decodeScope(encoded string) (string, bool) {
	if encoded == emptyScope {
		return "", true
	}
	b, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// toKey makes `resource-scope`; resources never contain a dash.
func toKey(resource, scope string) string {
	return resource + "-" + encodeScope(scope)
}

func fromKey(key string) (Key, bool) {
	resource, encoded, ok := strings.Cut(key, "-")
	if !ok || resource == "" {
		return Key{}, false
	}
	scope, ok := decodeScope(encoded)
	if !ok {
		return Key{}, false
	}
	return Key{Resource: resource, Scope: scope}, true
}

func keyToPathTransform(s string) *diskv.PathKey {
	resource, encoded, _ := strings.Cut(s, "-")
	return &diskv.PathKey{
		Path:     []string{resource},
		FileName: encoded + fileExt,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), strings.TrimSuffix(pathKey.FileName, fileExt))
}
