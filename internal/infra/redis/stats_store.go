package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ruleta-service/internal/domain"
)

const (
	fieldAnswered  = "total_respondidas"
	fieldCorrect   = "total_correctas"
	fieldIncorrect = "total_incorrectas"
)

// StatsStore keeps answer counters in one Redis hash per mode:
// HINCRBY ruleta:estadisticas:{mode} total_respondidas 1
type StatsStore struct {
	client *redis.Client
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client}
}

func (s *StatsStore) Record(ctx context.Context, mode domain.Mode, correct bool) (domain.Statistics, error) {
	key := s.key(mode)
	outcome := fieldIncorrect
	if correct {
		outcome = fieldCorrect
	}

	var all *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldAnswered, 1)
		pipe.HIncrBy(ctx, key, outcome, 1)
		all = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return domain.Statistics{}, err
	}
	return parseStats(all.Val()), nil
}

func (s *StatsStore) Get(ctx context.Context, mode domain.Mode) (domain.Statistics, error) {
	fields, err := s.client.HGetAll(ctx, s.key(mode)).Result()
	if err != nil && !isMiss(err) {
		return domain.Statistics{}, err
	}
	return parseStats(fields), nil
}

func (s *StatsStore) Reset(ctx context.Context, mode domain.Mode) error {
	return s.client.Del(ctx, s.key(mode)).Err()
}

func (s *StatsStore) key(mode domain.Mode) string {
	return "ruleta:estadisticas:" + string(mode)
}

func parseStats(fields map[string]string) domain.Statistics {
	atoi := func(name string) int64 {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return domain.Statistics{
		TotalRespondidas: atoi(fieldAnswered),
		TotalCorrectas:   atoi(fieldCorrect),
		TotalIncorrectas: atoi(fieldIncorrect),
	}
}
