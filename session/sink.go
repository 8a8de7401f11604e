package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSession indicates the sink holds no saved draft.
var ErrNoSession = errors.New("no saved session")

// FileSink persists snapshots as a single JSON file. Writes go through a
// temp file and rename so a crash mid-save never corrupts the snapshot.
type FileSink struct {
	path string
}

// NewFileSink creates a sink at path, creating parent directories.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileSink{path: path}, nil
}

// Save implements Sink.
func (f *FileSink) Save(s *Saved) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Load implements Sink.
func (f *FileSink) Load() (*Saved, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Saved
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &s, nil
}

// Clear implements Sink.
func (f *FileSink) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemorySink keeps the snapshot in process memory, for tests.
type MemorySink struct {
	mu    sync.Mutex
	saved *Saved

	// SaveCount tallies Save calls so tests can assert tick behavior.
	SaveCount int
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Save implements Sink.
func (m *MemorySink) Save(s *Saved) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.saved = &copied
	m.SaveCount++
	return nil
}

// Load implements Sink.
func (m *MemorySink) Load() (*Saved, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, ErrNoSession
	}
	copied := *m.saved
	return &copied, nil
}

// Clear implements Sink.
func (m *MemorySink) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}
