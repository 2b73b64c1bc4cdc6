package memory

import (
	"context"
	"sync"

	"ruleta-service/internal/domain"
)

// GameStateStore keeps the turn state in process memory; it is lost on restart.
type GameStateStore struct {
	mu    sync.RWMutex
	state domain.TurnState
}

func NewGameStateStore() *GameStateStore {
	return &GameStateStore{}
}

func (s *GameStateStore) Load(_ context.Context) (domain.TurnState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

func (s *GameStateStore) Save(_ context.Context, state domain.TurnState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}
