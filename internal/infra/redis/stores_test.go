package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"ruleta-service/internal/domain"
)

func TestActiveIDCacheStoresInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewActiveIDCache(newClient(mr), time.Minute)
	loader := &countingLoader{ids: []int64{3, 5, 8}}

	ids, err := cache.ActiveIDs(context.Background(), domain.ModeClassic, loader.load)
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 3 || loader.calls != 1 {
		t.Fatalf("expected 3 ids from one load, got %v after %d calls", ids, loader.calls)
	}
	if !mr.Exists("ruleta:activas:clasico") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	_, _ = cache.ActiveIDs(context.Background(), domain.ModeClassic, loader.load)
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	if err := cache.Invalidate(context.Background(), domain.ModeClassic); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("ruleta:activas:clasico") {
		t.Fatalf("expected redis key to be removed")
	}
	_, _ = cache.ActiveIDs(context.Background(), domain.ModeClassic, loader.load)
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestActiveIDCacheDropsLoadRacingInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewActiveIDCache(newClient(mr), time.Minute)
	repo := []int64{1, 2, 3}
	calls := 0
	load := func(context.Context) ([]int64, error) {
		calls++
		snapshot := append([]int64(nil), repo...)
		if calls == 1 {
			// Question 2 is answered while this load is in flight.
			repo = []int64{1, 3}
			if err := cache.Invalidate(ctx, domain.ModeClassic); err != nil {
				t.Fatalf("invalidate: %v", err)
			}
		}
		return snapshot, nil
	}

	if _, err := cache.ActiveIDs(ctx, domain.ModeClassic, load); err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if mr.Exists("ruleta:activas:clasico") {
		t.Fatalf("stale load must not be written back")
	}

	ids, err := cache.ActiveIDs(ctx, domain.ModeClassic, load)
	if err != nil {
		t.Fatalf("active ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 || calls != 2 {
		t.Fatalf("expected fresh [1 3] after invalidation, got %v after %d loads", ids, calls)
	}
	if !mr.Exists("ruleta:activas:clasico") {
		t.Fatalf("expected fresh list to be cached")
	}
}

func TestActiveIDCacheExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewActiveIDCache(newClient(mr), time.Minute)
	loader := &countingLoader{ids: []int64{1}}

	_, _ = cache.ActiveIDs(context.Background(), domain.ModeSelf, loader.load)
	mr.FastForward(2 * time.Minute)
	_, _ = cache.ActiveIDs(context.Background(), domain.ModeSelf, loader.load)
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestStatsStoreCounters(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewStatsStore(newClient(mr))

	if _, err := store.Record(ctx, domain.ModeClassic, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	stats, err := store.Record(ctx, domain.ModeClassic, false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if stats.TotalRespondidas != 2 || stats.TotalCorrectas != 1 || stats.TotalIncorrectas != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if got := mr.HGet("ruleta:estadisticas:clasico", "total_respondidas"); got != "2" {
		t.Fatalf("expected hash field 2, got %q", got)
	}

	if err := store.Reset(ctx, domain.ModeClassic); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stats, err = store.Get(ctx, domain.ModeClassic)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stats != (domain.Statistics{}) {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestGameStateStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewGameStateStore(newClient(mr), 0)

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Iniciado || empty.TurnoActual != nil {
		t.Fatalf("expected zero state, got %+v", empty)
	}

	turn := int64(4)
	want := domain.TurnState{Iniciado: true, TurnoActual: &turn, TurnoBloqueado: true, ColaPendientes: []int64{1, 2}}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second store on the same server sees the saved game.
	got, err := NewGameStateStore(newClient(mr), 0).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.TurnoBloqueado || got.TurnoActual == nil || *got.TurnoActual != 4 || len(got.ColaPendientes) != 2 {
		t.Fatalf("unexpected state %+v", got)
	}
}

type countingLoader struct {
	ids   []int64
	calls int
}

func (l *countingLoader) load(context.Context) ([]int64, error) {
	l.calls++
	return l.ids, nil
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
