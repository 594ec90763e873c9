package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/prepdeck/pkg/metrics"
)

const defaultSweepInterval = 30 * time.Second

// MemoryStore is a mutex-guarded map of sessions with a background sweeper.
type MemoryStore struct {
	mu            sync.Mutex
	byID          map[string]*Session
	maxSessions   int
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its sweeper, which runs until
// ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:          make(map[string]*Session),
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startSweeper(ctx)
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(s.now())
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Sweep drops every session whose retention expired before now and returns
// how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.byID {
		if !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(now) {
			delete(s.byID, id)
			removed++
		}
	}
	n := len(s.byID)
	s.mu.Unlock()

	if removed > 0 {
		metrics.RecordSessionsExpired(removed)
	}
	metrics.UpdateSessionsLive(n)
	return removed
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	if _, ok := s.byID[sess.ID]; ok {
		s.mu.Unlock()
		return ErrExists
	}
	if s.maxSessions > 0 && len(s.byID) >= s.maxSessions {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "capacity")
		return ErrCapacity
	}
	cp := sess.Clone()
	s.byID[sess.ID] = &cp
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateSessionsLive(n)
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess.Clone(), nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	err := fn(sess)
	return sess.Clone(), err
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateSessionsLive(n)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
