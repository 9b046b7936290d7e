package session

import (
	"context"
	"sync"
)

// MemoryProvider keeps sessions in process memory. Data does not expire.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		data: make(map[string]map[string][]byte),
	}
}

// Open returns a handle on the session id.
func (p *MemoryProvider) Open(id string) Session {
	return &memorySession{id: id, p: p}
}

type memorySession struct {
	id string
	p  *MemoryProvider
}

func (s *memorySession) ID() string { return s.id }

func (s *memorySession) Get(_ context.Context, key string) ([]byte, error) {
	s.p.mu.RLock()
	defer s.p.mu.RUnlock()

	v, ok := s.p.data[s.id][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memorySession) Set(_ context.Context, key string, value []byte) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	bag, ok := s.p.data[s.id]
	if !ok {
		bag = make(map[string][]byte)
		s.p.data[s.id] = bag
	}
	bag[key] = append([]byte(nil), value...)
	return nil
}

func (s *memorySession) Delete(_ context.Context, keys ...string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	bag := s.p.data[s.id]
	for _, k := range keys {
		delete(bag, k)
	}
	if len(bag) == 0 {
		delete(s.p.data, s.id)
	}
	return nil
}
