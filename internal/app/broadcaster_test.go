package app_test

import (
	"testing"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
)

func TestBroadcasterDropsOldestForSlowSubscribers(t *testing.T) {
	b := app.NewBroadcaster()
	ch, cancel := b.Subscribe(domain.GameState{})
	defer cancel()

	for i := 0; i < 20; i++ {
		b.Publish(domain.GameState{Jugadores: make([]domain.Player, i)})
	}

	var got []int
	for len(ch) > 0 {
		got = append(got, len((<-ch).Jugadores))
	}
	// The oldest snapshots were dropped; the newest buffered ones arrive in order.
	if len(got) != 8 || got[0] != 12 || got[len(got)-1] != 19 {
		t.Fatalf("expected snapshots 12..19, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] != got[i-1]+1 {
			t.Fatalf("snapshots out of order: %v", got)
		}
	}
}

func TestBroadcasterCancelClosesChannel(t *testing.T) {
	b := app.NewBroadcaster()
	ch, cancel := b.Subscribe(domain.GameState{})
	if b.Subscribers() != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	cancel()

	<-ch // initial snapshot is still buffered
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if b.Subscribers() != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
}
