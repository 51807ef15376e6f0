package entry

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps entries in a map. Nothing survives a restart.
type MemoryStore struct {
	sync.RWMutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	titles := make([]string, 0, len(s.entries))
	for title := range s.entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *MemoryStore) Get(ctx context.Context, title string) (string, bool, error) {
	s.RLock()
	defer s.RUnlock()
	content, exists := s.entries[title]
	return content, exists, nil
}

func (s *MemoryStore) Save(ctx context.Context, title, content string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	s.entries[title] = content
	return nil
}
