// Package prefs is a best-effort JSON key/value store for small UI
// preferences. Reads fall back to defaults and writes may silently fail;
// nothing in the planner depends on a preference surviving.
package prefs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// Store persists preferences to a single JSON file.
type Store struct {
	path   string
	values map[string]json.RawMessage
}

// Open loads the store at path. A missing or unreadable file yields an
// empty store; that is not an error.
func Open(path string) *Store {
	s := &Store{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		appLog.Warn("preference file unreadable; starting empty", "path", path)
		s.values = make(map[string]json.RawMessage)
	}
	return s
}

// Bool returns the stored boolean for key, or def when absent or malformed.
func (s *Store) Bool(key string, def bool) bool {
	raw, ok := s.values[key]
	if !ok {
		return def
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	return v
}

// SetBool stores a boolean and flushes the file. Persistence failures are
// logged and ignored.
func (s *Store) SetBool(key string, value bool) {
	raw, _ := json.Marshal(value)
	s.values[key] = raw
	s.flush()
}

func (s *Store) flush() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		appLog.Warn("could not encode preferences", "path", s.path)
		return
	}
	if dir := filepath.Dir(s.path); dir != "" {
		_ = os.MkdirAll(dir, 0o700)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		appLog.Warn("could not persist preferences", "path", s.path, "err", err)
	}
}
