package kitchen

import (
	"sort"
	"sync"

	"github.com/appetiteclub/pos/internal/prefs"
)

// Selection is the set of kitchen item ids staff picked for the next bulk
// transition. It is written through to the preferences store when one is set.
type Selection struct {
	mu    sync.RWMutex
	ids   map[string]bool
	store *prefs.Store
}

// NewSelection restores the last persisted selection from store.
func NewSelection(store *prefs.Store) *Selection {
	s := &Selection{ids: make(map[string]bool), store: store}
	if store != nil {
		for _, id := range store.Get().KitchenSelection {
			s.ids[id] = true
		}
	}
	return s
}

// Toggle flips one id and reports whether it is now selected.
func (s *Selection) Toggle(id string) (bool, error) {
	s.mu.Lock()
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
	on := s.ids[id]
	s.mu.Unlock()
	return on, s.persist()
}

// Add selects every given id.
func (s *Selection) Add(ids ...string) error {
	s.mu.Lock()
	for _, id := range ids {
		s.ids[id] = true
	}
	s.mu.Unlock()
	return s.persist()
}

func (s *Selection) Clear() error {
	s.mu.Lock()
	s.ids = make(map[string]bool)
	s.mu.Unlock()
	return s.persist()
}

func (s *Selection) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id]
}

// IDs returns the selected ids sorted.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Prune drops ids that are no longer on the queue and returns how many went.
func (s *Selection) Prune(present map[string]bool) (int, error) {
	s.mu.Lock()
	removed := 0
	for id := range s.ids {
		if !present[id] {
			delete(s.ids, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}
	return removed, s.persist()
}

func (s *Selection) idsLocked() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Selection) persist() error {
	if s.store == nil {
		return nil
	}
	ids := s.IDs()
	return s.store.Update(func(p *prefs.Preferences) {
		p.KitchenSelection = ids
	})
}
