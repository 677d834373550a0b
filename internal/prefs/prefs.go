package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultTimeframe = "today"

// Preferences are the few choices a terminal remembers between runs.
type Preferences struct {
	ReportTimeframe  string   `yaml:"report_timeframe"`
	KitchenSelection []string `yaml:"kitchen_selection,omitempty"`
	LastTable        int      `yaml:"last_table,omitempty"`
}

func defaults() Preferences {
	return Preferences{ReportTimeframe: DefaultTimeframe}
}

// Store reads and writes preferences from a YAML file.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Preferences
}

// Open loads path, using defaults when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: defaults()}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(raw, &s.current); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	if s.current.ReportTimeframe == "" {
		s.current.ReportTimeframe = DefaultTimeframe
	}
	return s, nil
}

// Memory returns a store that never touches disk.
func Memory() *Store {
	return &Store{current: defaults()}
}

func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.current
	p.KitchenSelection = append([]string(nil), s.current.KitchenSelection...)
	return p
}

// Update applies fn to a copy of the preferences and persists the result.
// The in-memory value only changes when the write succeeds.
func (s *Store) Update(fn func(*Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.KitchenSelection = append([]string(nil), s.current.KitchenSelection...)
	fn(&next)

	if err := s.write(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

func (s *Store) write(p Preferences) error {
	if s.path == "" {
		return nil
	}

	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
