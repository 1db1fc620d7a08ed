package bot

import (
	"math/rand"
	"sync"
	"time"
)

// lockedRand shares one generator between sessions served concurrently.
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand - returns a goroutine-safe Rand. A zero seed is replaced by the current time.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &lockedRand{rnd: rand.New(rand.NewSource(seed))} //nolint: gosec // game moves, not secrets
}

func (that *lockedRand) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}

func (that *lockedRand) Float64() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Float64()
}
