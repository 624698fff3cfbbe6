package memory

import (
	"context"
	"sync"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.ConfigStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.DynamicOptionsConfig
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.DynamicOptionsConfig),
	}
}

// Save persists the config in memory.
func (s *Store) Save(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := cfg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[questionID] = copied
	return nil
}

// Load retrieves the config from memory.
func (s *Store) Load(ctx context.Context, questionID string) (*domain.DynamicOptionsConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.data[questionID]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return cfg.Clone(), nil
}

// Delete removes the config.
func (s *Store) Delete(ctx context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, questionID)
	return nil
}

// List returns the question ids with a stored config.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions := make([]string, 0, len(s.data))
	for id := range s.data {
		questions = append(questions, id)
	}
	return questions, nil
}
