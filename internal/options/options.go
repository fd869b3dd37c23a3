// Package options provides the daemon's key/value options store: a small
// TOML-backed map consulted for runtime-tunable settings such as the
// do-not-disturb flag and popup limits.
package options

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/hushd/hush/internal/event"
)

// SignalChanged is emitted on the store's hub whenever an option value
// changes; the payload is the option key.
const SignalChanged = "option-changed"

// Store is a persistent key/value options store. Values survive as TOML on
// disk and external edits are picked up by Watch.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any

	logger  *slog.Logger
	events  *event.Hub
	watcher *fsnotify.Watcher
}

// DefaultPath returns the standard options file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "hush", "options.toml")
}

// Open loads the options store at path, creating an empty store when the
// file does not exist yet.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   path,
		values: make(map[string]any),
		logger: logger,
		events: event.NewHub(),
	}

	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload replaces the in-memory values with the file contents. A missing
// file yields an empty map; a malformed file is kept on disk but reported.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read options file %s: %w", s.path, err)
	}

	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse options file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the raw stored value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value for key and persists the store. Subscribers are
// notified with the key.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.events.Emit(SignalChanged, key)
	return nil
}

// CreateIfAbsent stores the default value for key only when no value
// exists yet.
func (s *Store) CreateIfAbsent(key string, def any) error {
	s.mu.Lock()
	if _, ok := s.values[key]; ok {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = def
	err := s.saveLocked()
	s.mu.Unlock()
	return err
}

// Bool returns the option as a bool, or false when unset or mistyped.
func (s *Store) Bool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Int returns the option as an int, or 0 when unset or mistyped. TOML
// decodes integers as int64, so both widths are accepted.
func (s *Store) Int(key string) int {
	v, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// OnChange registers a handler invoked with the key of any changed option.
func (s *Store) OnChange(fn func(key string)) event.Token {
	return s.events.Subscribe(SignalChanged, func(payload any) {
		if key, ok := payload.(string); ok {
			fn(key)
		}
	})
}

// Unsubscribe removes a change subscription.
func (s *Store) Unsubscribe(token event.Token) {
	s.events.Unsubscribe(token)
}

// saveLocked writes the store atomically via a temp file. Caller holds mu.
func (s *Store) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create options directory: %w", err)
	}

	data, err := toml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write options file: %w", err)
	}
	return os.Rename(tmpPath, s.path)
}

// Watch starts picking up external edits to the options file until ctx is
// cancelled. Changed keys are reported to OnChange subscribers.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create options watcher: %w", err)
	}
	s.watcher = watcher

	// Watch the directory: editors replace files via rename, which drops
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch options directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				s.handleExternalChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("options watcher error", "error", err)
			}
		}
	}()

	return nil
}

// handleExternalChange reloads the file and notifies subscribers of every
// key whose value differs from the in-memory state.
func (s *Store) handleExternalChange() {
	s.mu.RLock()
	before := make(map[string]any, len(s.values))
	for k, v := range s.values {
		before[k] = v
	}
	s.mu.RUnlock()

	if err := s.reload(); err != nil {
		s.logger.Warn("failed to reload options file", "error", err)
		return
	}

	s.mu.RLock()
	changed := make([]string, 0)
	for k, v := range s.values {
		if old, ok := before[k]; !ok || !reflect.DeepEqual(old, v) {
			changed = append(changed, k)
		}
	}
	for k := range before {
		if _, ok := s.values[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.mu.RUnlock()

	for _, k := range changed {
		s.logger.Debug("option changed externally", "key", k)
		s.events.Emit(SignalChanged, k)
	}
}
