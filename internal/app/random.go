package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/okian/prepdeck/internal/domain/sequencer"
)

// lockedSource serializes access to a Source shared by all sessions.
type lockedSource struct {
	mu  sync.Mutex
	src sequencer.Source
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

// NewSeededSource returns a generator seeded with seed, or with the current
// time when seed is zero.
func NewSeededSource(seed int64) sequencer.Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // question order is not security sensitive
}
