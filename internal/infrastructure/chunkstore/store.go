package chunkstore

import (
	"fmt"
	"sort"
	"sync"

	"lumi/internal/core/domain"
)

// Store is the in-process registry of collections and their chunks. It also
// carries the per-collection reader/writer guard that keeps ingestion and
// retrieval from interleaving: ingestion and deletion take Exclusive,
// retrieval takes Shared.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]domain.Chunk
	// guards are created on demand and survive Drop, so an in-flight release
	// never unlocks a vanished mutex.
	guards map[string]*sync.RWMutex
}

func New() *Store {
	return &Store{
		collections: make(map[string][]domain.Chunk),
		guards:      make(map[string]*sync.RWMutex),
	}
}

func (s *Store) Create(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; ok {
		return fmt.Errorf("collection %q already exists", collection)
	}
	s.collections[collection] = nil
	return nil
}

func (s *Store) Exists(collection string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok
}

func (s *Store) Append(collection string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	s.collections[collection] = append(s.collections[collection], chunks...)
	return nil
}

func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) List() []domain.CollectionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CollectionInfo, 0, len(s.collections))
	for name, chunks := range s.collections {
		out = append(out, domain.CollectionInfo{Name: name, Chunks: len(chunks)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) Drop(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	delete(s.collections, collection)
	return nil
}

// Exclusive blocks until no retrieval holds the collection, then blocks new
// retrieval until released.
func (s *Store) Exclusive(collection string) func() {
	guard := s.guard(collection)
	guard.Lock()
	return guard.Unlock
}

// Shared admits concurrent retrieval while excluding ingestion.
func (s *Store) Shared(collection string) func() {
	guard := s.guard(collection)
	guard.RLock()
	return guard.RUnlock
}

func (s *Store) guard(collection string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	guard, ok := s.guards[collection]
	if !ok {
		guard = &sync.RWMutex{}
		s.guards[collection] = guard
	}
	return guard
}
