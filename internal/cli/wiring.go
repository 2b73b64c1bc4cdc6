package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ruleta-service/internal/app"
	"ruleta-service/internal/config"
	"ruleta-service/internal/infra/memory"
	"ruleta-service/internal/infra/postgres"
	infraredis "ruleta-service/internal/infra/redis"
	transport "ruleta-service/internal/transport/http"
)

// buildServices picks Postgres or memory for the question banks and roster,
// and Redis or memory for counters, game state and the active-id cache.
// The returned cleanup closes every connection that was opened.
func buildServices(ctx context.Context, cfg config.Config) (transport.Services, func(), error) {
	var (
		questions     app.QuestionRepository
		selfQuestions app.SelfQuestionRepository
		players       app.PlayerRepository
		closers       []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return transport.Services{}, cleanup, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		store := postgres.NewStore(pool)
		questions, selfQuestions, players = store.Questions(), store.SelfQuestions(), store.Players()
		log.Info().Msg("storage: postgres")
	} else {
		db := memory.NewDatabase()
		questions, selfQuestions, players = db.Questions(), db.SelfQuestions(), db.Players()
		log.Info().Msg("storage: memory")
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 30*time.Second)
	var (
		stats  app.StatsStore
		states app.GameStateStore
		active app.ActiveIDCache
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return transport.Services{}, cleanup, fmt.Errorf("ping redis: %w", err)
		}
		stats = infraredis.NewStatsStore(client)
		states = infraredis.NewGameStateStore(client, config.TTLDuration(cfg.Redis.TTL, 0))
		active = infraredis.NewActiveIDCache(client, cacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("state: redis")
	} else {
		stats = memory.NewStatsStore()
		states = memory.NewGameStateStore()
		active = memory.NewActiveIDCache(cacheTTL)
		log.Info().Msg("state: memory")
	}

	return transport.Services{
		Questions: app.NewQuestionService(questions, stats, active),
		Self:      app.NewSelfAssessmentService(selfQuestions, stats, active),
		Game:      app.NewGameService(players, selfQuestions, states, app.NewBroadcaster()),
	}, cleanup, nil
}
