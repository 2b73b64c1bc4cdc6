package memory

import (
	"context"
	"sync"

	"ruleta-service/internal/domain"
)

// StatsStore is an in-memory implementation of app.StatsStore.
type StatsStore struct {
	mu    sync.Mutex
	stats map[domain.Mode]domain.Statistics
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[domain.Mode]domain.Statistics)}
}

func (s *StatsStore) Record(_ context.Context, mode domain.Mode, correct bool) (domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := s.stats[mode].Record(correct)
	s.stats[mode] = updated
	return updated, nil
}

func (s *StatsStore) Get(_ context.Context, mode domain.Mode) (domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[mode], nil
}

func (s *StatsStore) Reset(_ context.Context, mode domain.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stats, mode)
	return nil
}
