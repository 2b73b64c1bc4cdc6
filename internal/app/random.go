package app

import (
	"math/rand"
	"sync"
	"time"
)

// randomSource is a *rand.Rand that is safe for concurrent use.
type randomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newRandomSource() *randomSource {
	return &randomSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *randomSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *randomSource) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

// pick draws one element uniformly; ids must not be empty.
func (r *randomSource) pick(ids []int64) int64 {
	return ids[r.Intn(len(ids))]
}
