package session

import (
	"context"
	"fmt"
	"sync"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore keeps entries for the life of the process only.
func NewMemoryStore() Store {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Load(_ context.Context, keys ...string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, ok := s.data[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, k)
		}
		entries = append(entries, Entry{Key: k, Value: append([]byte(nil), v...)})
	}
	return entries, nil
}

func (s *memStore) Save(_ context.Context, entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}
