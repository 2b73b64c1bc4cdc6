package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ruleta-service/internal/domain"
)

const gameStateKey = "ruleta:juego:estado"

// GameStateStore persists the turn state as JSON so a restarted server
// resumes the running game. A zero ttl keeps the key forever.
type GameStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameStateStore(client *redis.Client, ttl time.Duration) *GameStateStore {
	return &GameStateStore{client: client, ttl: ttl}
}

func (s *GameStateStore) Load(ctx context.Context) (domain.TurnState, error) {
	data, err := s.client.Get(ctx, gameStateKey).Bytes()
	if isMiss(err) {
		return domain.TurnState{}, nil
	}
	if err != nil {
		return domain.TurnState{}, fmt.Errorf("load game state: %w", err)
	}
	var state domain.TurnState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.TurnState{}, fmt.Errorf("decode game state: %w", err)
	}
	return state, nil
}

func (s *GameStateStore) Save(ctx context.Context, state domain.TurnState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameStateKey, data, s.ttl).Err()
}
