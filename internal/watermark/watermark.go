package watermark

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store keeps the last accepted timestamp per stream. Every mutation rewrites
// the whole file before returning, so a crash mid-session loses at most the
// in-flight item. A missing entry means "process everything".
type Store struct {
	path  string
	mu    sync.Mutex
	marks map[string]time.Time
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure data dir: %w", err)
	}
	s := &Store{path: path, marks: make(map[string]time.Time)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the last accepted timestamp for the stream, if any.
func (s *Store) Get(streamID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.marks[streamID]
	return t, ok
}

// ShouldProcess reports whether ts lies strictly beyond the watermark.
// Equal timestamps are rejected to keep the boundary item from being
// reprocessed across sessions.
func (s *Store) ShouldProcess(ts time.Time, streamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.marks[streamID]
	if !ok {
		return true
	}
	return ts.After(last)
}

// Advance moves the watermark to ts and persists it. Timestamps at or below
// the current value are ignored, keeping the watermark monotonic.
func (s *Store) Advance(ts time.Time, streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.marks[streamID]; ok && !ts.After(last) {
		return nil
	}
	s.marks[streamID] = ts.UTC()
	return s.save()
}

func (s *Store) Reset(streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.marks[streamID]; !ok {
		return nil
	}
	delete(s.marks, streamID)
	return s.save()
}

// Summary returns a copy of all tracked watermarks for status reporting.
func (s *Store) Summary() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.marks))
	for k, v := range s.marks {
		out[k] = v
	}
	return out
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.save()
	}
	if err != nil {
		return fmt.Errorf("failed to read watermark file: %w", err)
	}
	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse watermark file: %w", err)
	}
	for stream, stamp := range raw {
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			log.Printf("invalid watermark for stream %s: %q", stream, stamp)
			continue
		}
		s.marks[stream] = t.UTC()
	}
	return nil
}

func (s *Store) save() error {
	raw := make(map[string]string, len(s.marks))
	for stream, t := range s.marks {
		raw[stream] = t.Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watermarks: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write watermark file: %w", err)
	}
	return nil
}
