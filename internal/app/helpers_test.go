package service_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/prepdeck/internal/domain/model"
)

// firstSource always picks the first candidate.
type firstSource struct{}

func (firstSource) Intn(int) int { return 0 }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

// question builds a pool entry whose correct option is always index 0.
func question(text string, d model.Difficulty) model.Question {
	return model.Question{
		Text:       text,
		Options:    []string{"right", "wrong-1", "wrong-2", "wrong-3"},
		Difficulty: d,
	}
}

func balancedPool() []model.Question {
	return []model.Question{
		question("e1", model.Easy), question("e2", model.Easy),
		question("m1", model.Medium), question("m2", model.Medium),
		question("h1", model.Hard), question("h2", model.Hard),
	}
}

func intPtr(v int) *int { return &v }

var (
	right = intPtr(0)
	wrong = intPtr(1)
)
